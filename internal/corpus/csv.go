package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one fact read from a corpus file, before it is stored.
type Entry struct {
	ID     string
	Source string
	Text   string
	Corpus string
}

// Source is a corpus file and the label its facts are attributed to.
type Source struct {
	Path  string
	Label string
}

// Exclude is a set of moderated fact ids.
type Exclude map[string]struct{}

// Has reports whether id is excluded. A nil Exclude excludes nothing.
func (e Exclude) Has(id string) bool {
	_, ok := e[id]
	return ok
}

// ErrMissingColumn is returned when a corpus header lacks the id or quote
// column.
var ErrMissingColumn = errors.New("corpus: csv header must have id and quote columns")

// ReadCSV reads an id,quote corpus with a header row and calls fn for every
// entry not in exclude. Quotes lose any surrounding double quotes and facts
// are attributed as "<label> #<id>".
func ReadCSV(r io.Reader, label string, exclude Exclude, fn func(Entry) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrMissingColumn
		}
		return fmt.Errorf("corpus: read header: %w", err)
	}

	idCol, quoteCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "id":
			idCol = i
		case "quote":
			quoteCol = i
		}
	}
	if idCol < 0 || quoteCol < 0 {
		return ErrMissingColumn
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corpus: read row: %w", err)
		}
		if idCol >= len(row) || quoteCol >= len(row) {
			continue
		}

		id := strings.TrimSpace(row[idCol])
		if exclude.Has(id) {
			continue
		}
		text := strings.Trim(row[quoteCol], `"`)
		if strings.TrimSpace(text) == "" {
			continue
		}

		if err := fn(Entry{
			ID:     id,
			Source: fmt.Sprintf("%s #%s", label, id),
			Text:   text,
			Corpus: label,
		}); err != nil {
			return err
		}
	}
}

// ReadCSVFile is ReadCSV over the file at src.Path.
func ReadCSVFile(src Source, exclude Exclude, fn func(Entry) error) error {
	f, err := os.Open(src.Path)
	if err != nil {
		return fmt.Errorf("corpus: open %s: %w", src.Path, err)
	}
	defer func() { _ = f.Close() }()

	if err := ReadCSV(f, src.Label, exclude, fn); err != nil {
		return fmt.Errorf("%s: %w", src.Path, err)
	}
	return nil
}

// ReadExclude parses a moderation list of "<id> <reason>" lines. Blank
// lines are ignored and the reason is optional.
func ReadExclude(r io.Reader) (Exclude, error) {
	exclude := make(Exclude)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id, _, _ := strings.Cut(line, " ")
		exclude[id] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read exclude list: %w", err)
	}
	return exclude, nil
}

// ReadExcludeFile is ReadExclude over path. An empty path yields an empty
// list.
func ReadExcludeFile(path string) (Exclude, error) {
	if path == "" {
		return Exclude{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadExclude(f)
}
