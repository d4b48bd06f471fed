package chunk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/afs"
)

// timeNow is swapped out by tests to get stable backup names.
var timeNow = time.Now

// Run executes one chunking pass: read the document from a file or stdin,
// plan the split, back up the original when rewriting it in place, and write
// the index plus every chunk.
//
// The backup-then-overwrite sequence is not transactional; a crash in
// between can leave both files behind, which beats losing the original.
func Run(ctx context.Context, fs afs.Service, input, output, target string, limit int, stdin io.Reader, stdout io.Writer) error {
	var data []byte
	var err error

	fromStdin := input == "" || input == "-"
	if fromStdin {
		if output == "" {
			return ErrOutputRequired
		}
		if data, err = io.ReadAll(stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		ok, err := fs.Exists(ctx, input)
		if err != nil {
			return fmt.Errorf("stat %s: %w", input, err)
		}
		if !ok {
			return &ErrNoInput{Path: input}
		}
		if data, err = fs.DownloadWithURL(ctx, input); err != nil {
			return fmt.Errorf("read %s: %w", input, err)
		}
	}

	doc, err := Parse(data)
	if err != nil {
		return err
	}

	dest := output
	if dest == "" {
		dest = input
	}

	plan, err := Split(filepath.Base(dest), doc, target, limit)
	if err != nil {
		return err
	}

	if plan.Chunked() {
		label := target
		if label == "" {
			label = "document"
		}
		total := 0
		for _, chunk := range plan.Chunks {
			total += chunk.Len()
		}
		fmt.Fprintf(stdout, "Counted %d rows in %s.\n", plan.Rows, label)
		fmt.Fprintf(stdout, "Counted %d rows in %d chunks.\n", total, len(plan.Chunks))
	}

	// Keep a copy of the original before rewriting it in place.
	if !fromStdin && dest == input {
		backup := backupPath(dest, timeNow().Unix())
		if err := writeFile(ctx, fs, backup, data, stdout); err != nil {
			return err
		}
	}

	index, err := json.Marshal(plan.Index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := writeFile(ctx, fs, dest, index, stdout); err != nil {
		return err
	}

	for i, chunk := range plan.Chunks {
		payload, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("encode chunk %d: %w", i, err)
		}
		if err := writeFile(ctx, fs, chunkSibling(dest, plan.Names[i]), payload, stdout); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(ctx context.Context, fs afs.Service, location string, data []byte, stdout io.Writer) error {
	fmt.Fprintf(stdout, "Writing output to file %s...\n", location)
	if err := fs.Upload(ctx, location, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}

// chunkNames derives the chunk file names referenced by the index:
// "{basename}.{i}{extension}".
func chunkNames(indexName string, count int) []string {
	ext := filepath.Ext(indexName)
	base := strings.TrimSuffix(indexName, ext)
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s.%d%s", base, i, ext)
	}
	return names
}

// chunkSibling places a chunk file next to the index document.
func chunkSibling(dest, name string) string {
	return filepath.Join(filepath.Dir(dest), name)
}

// backupPath derives "{basename}.bak.{unix-epoch-seconds}{extension}".
func backupPath(dest string, epoch int64) string {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	return fmt.Sprintf("%s.bak.%d%s", base, epoch, ext)
}
