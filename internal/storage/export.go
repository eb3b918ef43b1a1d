package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/yawrate/internal/loop"
)

type ExportData struct {
	RunMetadata
	Series []loop.Tick `json:"series"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, ticks []loop.Tick) error {
	data := ExportData{
		RunMetadata: *meta,
		Series:      ticks,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
