package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kjk/idmap/atomicfile"
	"github.com/kjk/idmap/idmap"
	"github.com/kjk/idmap/log"
	"github.com/kjk/idmap/recstream"
	"github.com/kjk/idmap/symtab"
	"github.com/kjk/idmap/u"
)

func parseBase(s string) (uint64, error) {
	base, err := u.ParseAddress(s)
	if err != nil {
		return 0, fmt.Errorf("invalid image base '%s': %w", s, err)
	}
	return base, nil
}

func runApply() error {
	base, err := parseBase(cfg.apply.base)
	if err != nil {
		return err
	}
	var imageBase symtab.ImageBaser = symtab.FixedBase(base)
	tbl := symtab.NewTable()
	st, err := idmap.ApplyFile(cfg.apply.file, imageBase.ImageBase(), tbl)
	if errors.Is(err, recstream.ErrNotOpen) {
		return err
	}
	// a truncated file still applies names before the truncation
	log.IfErrf(err)
	log.Logf("applied %s from '%s' at image base 0x%X\n", st, cfg.apply.file, base)

	var buf bytes.Buffer
	if cfg.apply.json {
		d, err := tbl.JSON()
		if err != nil {
			return err
		}
		buf.Write(d)
	} else if err := tbl.WriteText(&buf); err != nil {
		return err
	}
	if cfg.apply.out != "" {
		return atomicfile.WriteFile(cfg.apply.out, buf.Bytes())
	}
	_, err = output.Write(buf.Bytes())
	return err
}

func runDump() error {
	base, err := parseBase(cfg.dump.base)
	if err != nil {
		return err
	}
	recs, err := idmap.ReadFile(cfg.dump.file)
	// print what we could read even if the file is truncated
	if err2 := idmap.FormatText(output, recs, base); err2 != nil {
		return err2
	}
	return err
}

func runPack() error {
	f, err := os.Open(cfg.pack.src)
	if err != nil {
		return err
	}
	defer u.CloseNoError(f)
	recs, err := idmap.ParseText(f)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.pack.src, err)
	}
	if err = idmap.WriteFile(cfg.pack.dst, recs); err != nil {
		return err
	}
	log.Logf("wrote %d records to '%s' (%s)\n", len(recs), cfg.pack.dst, u.FormatSize(u.FileSize(cfg.pack.dst)))
	return nil
}

type fileStat struct {
	records    int
	size       int64
	longest    int
	duplicates int
}

func statFile(path string) (fileStat, error) {
	var res fileStat
	s := recstream.New()
	if err := s.OpenMaybeCompressed(path); err != nil {
		return res, err
	}
	defer s.Close()
	res.size = s.Size()
	seen := map[uint32]bool{}
	r := idmap.NewReader(s)
	for r.ReadNextRecord() {
		res.records++
		res.longest = max(res.longest, r.Record.Name.Len())
		if seen[r.Record.Offset] {
			res.duplicates++
		}
		seen[r.Record.Offset] = true
	}
	return res, r.Err()
}

func runStat() error {
	var firstErr error
	for _, path := range cfg.stat.files {
		st, err := statFile(path)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if log.IfErrf(err, "%s: %v", path, err) && st.size == 0 {
			continue
		}
		fmt.Fprintf(output, "%s: %d records, %s, longest name: %d, duplicate offsets: %d\n", path, st.records, u.FormatSize(st.size), st.longest, st.duplicates)
		log.Event("idmap.stat", "file", path, "records", st.records, "size", st.size)
	}
	return firstErr
}
