package sections

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/models"
	"gopkg.in/yaml.v3"
)

// taxonomyFile is the on-disk shape of one taxonomy YAML file.
type taxonomyFile struct {
	Sections []models.TaxonomyEntry `yaml:"sections"`
}

// DefaultTaxonomy returns the built-in section table used when no taxonomy
// directory is configured. Order is significant: the grouper assigns each
// element to the first matching entry.
func DefaultTaxonomy() []models.TaxonomyEntry {
	return []models.TaxonomyEntry{
		{
			Key:         "member_info",
			DisplayName: "Member Information",
			Color:       "#2f7ed8",
			Keywords:    []string{"member", "name", "account", "id", "address"},
		},
		{
			Key:         "financial",
			DisplayName: "Financial Summary",
			Color:       "#0d8050",
			Keywords:    []string{"total", "due", "amount", "balance", "payment", "$"},
		},
		{
			Key:         "dates",
			DisplayName: "Dates & Deadlines",
			Color:       "#a66321",
			Keywords:    []string{"date", "due date", "period", "deadline"},
		},
		{
			Key:         "details",
			DisplayName: "Statement Details",
			Color:       "#5c4e8e",
			Keywords:    []string{"description", "detail", "item", "service", "charge"},
		},
	}
}

// LoadTaxonomyFromDir loads taxonomy entries from *.yaml / *.yml files in dir.
// Files are read in lexical order and their section lists concatenated, so a
// numeric filename prefix controls match priority. A missing or empty
// directory falls back to the built-in default table.
func LoadTaxonomyFromDir(dir string, logger arbor.ILogger) ([]models.TaxonomyEntry, error) {
	if dir == "" {
		return DefaultTaxonomy(), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("dir", dir).Msg("Taxonomy directory not found, using built-in default")
			return DefaultTaxonomy(), nil
		}
		return nil, fmt.Errorf("failed to read taxonomy directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var taxonomy []models.TaxonomyEntry
	seen := make(map[string]bool)
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
		}

		var file taxonomyFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
		}

		for _, section := range file.Sections {
			if section.Key == "" || len(section.Keywords) == 0 {
				logger.Warn().Str("file", name).Str("key", section.Key).Msg("Skipping taxonomy entry without key or keywords")
				continue
			}
			if seen[section.Key] {
				logger.Warn().Str("file", name).Str("key", section.Key).Msg("Duplicate taxonomy key, keeping first declaration")
				continue
			}
			seen[section.Key] = true
			taxonomy = append(taxonomy, section)
		}

		logger.Debug().Str("file", name).Int("sections", len(file.Sections)).Msg("Loaded taxonomy file")
	}

	if len(taxonomy) == 0 {
		logger.Info().Str("dir", dir).Msg("No taxonomy entries found, using built-in default")
		return DefaultTaxonomy(), nil
	}

	return taxonomy, nil
}
