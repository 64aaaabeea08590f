package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"chat-hub/errors"
)

//go:embed wordlists/*.txt
var wordlistFS embed.FS

// WordlistData carries the loaded words plus metadata for logging.
type WordlistData struct {
	Words     []string
	Languages []string
}

// LoadEmbedded parses the word lists shipped with the binary. Each
// .txt file is one language dictionary, one word per line.
func LoadEmbedded() (*WordlistData, error) {
	return loadAll(wordlistFS, "wordlists")
}

func loadAll(fsys fs.FS, path string) (*WordlistData, error) {
	entries, err := fs.ReadDir(fsys, path)
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			unique[strings.ToLower(line)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(unique))
	for w := range unique {
		words = append(words, w)
	}
	return &WordlistData{Words: words, Languages: languages}, nil
}
