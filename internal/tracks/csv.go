package tracks

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// WriteCSV materializes rows as a CSV file at path, header first.
// An existing file at the same path is overwritten.
func WriteCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}

// SkipFunc is invoked for each unusable row encountered while reading.
// line is the 1-based data row number (excluding the header).
type SkipFunc func(line int, reason string)

// ReadCSV parses a playlist export back into rows.
//
// Columns are located by header name, so column order and extra columns are
// tolerated; a missing optional column yields empty strings. Rows lacking a
// track name or artist name are reported through skip and dropped.
func ReadCSV(path string, skip SkipFunc) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []Row
	for n, record := range records[1:] {
		row := Row{
			TrackURI:         field(record, "Track URI"),
			TrackName:        strings.TrimSpace(field(record, "Track Name")),
			ArtistURIs:       field(record, "Artist URI(s)"),
			ArtistNames:      strings.TrimSpace(field(record, "Artist Name(s)")),
			AlbumURI:         field(record, "Album URI"),
			AlbumName:        strings.TrimSpace(field(record, "Album Name")),
			AlbumArtistURIs:  field(record, "Album Artist URI(s)"),
			AlbumArtistNames: field(record, "Album Artist Name(s)"),
			AlbumReleaseDate: field(record, "Album Release Date"),
			AlbumImageURL:    field(record, "Album Image URL"),
			DiscNumber:       field(record, "Disc Number"),
			TrackNumber:      field(record, "Track Number"),
			DurationMS:       field(record, "Track Duration (ms)"),
			PreviewURL:       field(record, "Track Preview URL"),
			Explicit:         field(record, "Explicit"),
			Popularity:       field(record, "Popularity"),
			ISRC:             field(record, "ISRC"),
			AddedBy:          field(record, "Added By"),
			AddedAt:          field(record, "Added At"),
			PlaylistName:     field(record, "Playlist Name"),
		}

		if row.TrackName == "" || row.ArtistNames == "" {
			if skip != nil {
				skip(n+1, "missing track or artist name")
			}
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}
