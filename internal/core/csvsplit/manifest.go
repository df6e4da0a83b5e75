package csvsplit

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	perr "brickdump/internal/platform/errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ManifestFile is the manifest name inside the parts dir
const ManifestFile = "parts_info.txt"

// ManifestInput describes a finished split for the manifest
type ManifestInput struct {
	InfoPath     string
	OriginalPath string
	Parts        int
	TotalRows    int64
	MaxPartMB    int
	PartsDir     string
	Layout       Layout
	RunID        string
}

// ManifestEntry is one part as found on disk
type ManifestEntry struct {
	Index int
	Name  string
	Bytes int64
}

// Manifest is the summary of a split with sizes read from disk
type Manifest struct {
	Parts         int
	OriginalPath  string
	OriginalBytes int64
	TotalRows     int64
	MaxPartMB     int
	RowsPerPart   int64 // zero when there are no parts
	RunID         string
	Entries       []ManifestEntry
}

// BuildManifest stats the source and every part. A missing source counts as zero bytes
// and missing parts are left out
func BuildManifest(in ManifestInput) (Manifest, error) {
	layout := in.Layout.orDefault()
	m := Manifest{
		Parts:        in.Parts,
		OriginalPath: in.OriginalPath,
		TotalRows:    in.TotalRows,
		MaxPartMB:    in.MaxPartMB,
		RunID:        in.RunID,
	}

	size, ok, err := fileSize(in.OriginalPath)
	if err != nil {
		return m, err
	}
	if ok {
		m.OriginalBytes = size
	}

	if in.Parts > 0 {
		m.RowsPerPart = (in.TotalRows + int64(in.Parts) - 1) / int64(in.Parts)
	}

	for i := 1; i <= in.Parts; i++ {
		path := layout.Path(in.PartsDir, i)
		size, ok, err := fileSize(path)
		if err != nil {
			return m, err
		}
		if !ok {
			continue
		}
		m.Entries = append(m.Entries, ManifestEntry{Index: i, Name: layout.Name(i), Bytes: size})
	}
	return m, nil
}

// Render formats the manifest one fact per line
func (m Manifest) Render() string {
	p := message.NewPrinter(language.English)
	count := func(n int64) string { return strings.ReplaceAll(p.Sprintf("%d", n), ",", " ") }

	lines := []string{
		fmt.Sprintf("File split into %d parts", m.Parts),
		fmt.Sprintf("Source file: %s", m.OriginalPath),
		fmt.Sprintf("Source size: %.2f MB", HumanMB(m.OriginalBytes)),
		fmt.Sprintf("Rows in source: %s", count(m.TotalRows)),
		fmt.Sprintf("Max part size: %d MB", m.MaxPartMB),
	}
	if m.Parts > 0 {
		lines = append(lines, fmt.Sprintf("Rows per part: %s", count(m.RowsPerPart)))
	}
	if m.RunID != "" {
		lines = append(lines, fmt.Sprintf("Run: %s", m.RunID))
	}
	lines = append(lines, "", "Parts:")
	for _, e := range m.Entries {
		lines = append(lines, fmt.Sprintf("%s: %.2f MB", e.Name, HumanMB(e.Bytes)))
	}
	return strings.Join(lines, "\n")
}

// WriteManifest builds the manifest and overwrites InfoPath with it
func WriteManifest(in ManifestInput) (Manifest, error) {
	m, err := BuildManifest(in)
	if err != nil {
		return m, err
	}
	if err := os.WriteFile(in.InfoPath, []byte(m.Render()), 0o644); err != nil {
		return m, perr.FromFS(err, "csvsplit: write manifest %s", in.InfoPath)
	}
	return m, nil
}

// HumanMB converts bytes to megabytes rounded to two decimals
func HumanMB(n int64) float64 {
	return math.Round(float64(n)/MB*100) / 100
}

// fileSize returns the size of a regular file and false when it does not exist
func fileSize(path string) (int64, bool, error) {
	if path == "" {
		return 0, false, nil
	}
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, perr.FromFS(err, "csvsplit: stat %s", path)
	}
	return fi.Size(), true, nil
}
