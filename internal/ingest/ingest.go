// Package ingest feeds external text files into the corpus store, applying
// the same filter live messages go through.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/snezhkin/govorun/internal/filter"
	"github.com/snezhkin/govorun/internal/store"
)

// Synthetic identity recorded against bulk-imported lines.
const (
	VirtualUserID   = 999999
	VirtualUsername = "data_uploader"
)

// Result summarizes one ingestion run.
type Result struct {
	Total   int
	Added   int
	Skipped int
}

// Appender is the slice of the corpus store ingestion needs.
type Appender interface {
	AppendMessage(ctx context.Context, text string, origin store.Origin) error
}

// NewOrigin returns the synthetic origin for one bulk-import batch.
func NewOrigin() store.Origin {
	return store.Origin{
		UserID:    VirtualUserID,
		Username:  VirtualUsername,
		FirstName: "Data",
		LastName:  "Uploader",
		ChatID:    VirtualUserID,
		ImportID:  store.NewImportID(),
	}
}

// ProcessLines reads r line by line, filters each trimmed non-empty line and
// appends the passing ones under the given origin.
func ProcessLines(ctx context.Context, r io.Reader, dst Appender, origin store.Origin) (Result, error) {
	var res Result
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		res.Total++
		if !filter.Valid(line) {
			res.Skipped++
			continue
		}
		if err := dst.AppendMessage(ctx, line, origin); err != nil {
			return res, fmt.Errorf("append line %d: %w", res.Total, err)
		}
		res.Added++
		if res.Added%100 == 0 {
			log.Printf("[ingest] %d lines read, %d stored", res.Total, res.Added)
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read input: %w", err)
	}
	return res, nil
}
