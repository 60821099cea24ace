package countries

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"saubio/models"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed data/countries.json
var rawCountries []byte

type countryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

type countryRecord struct {
	CCA2         string                 `json:"cca2"`
	Name         countryName            `json:"name"`
	Translations map[string]countryName `json:"translations"`
	IDD          struct {
		Root     string   `json:"root"`
		Suffixes []string `json:"suffixes"`
	} `json:"idd"`
}

var (
	directoryOnce sync.Once
	directory     []models.CountryOption
	byCode        map[string]models.CountryOption
)

func load() {
	var records []countryRecord
	if err := json.Unmarshal(rawCountries, &records); err != nil {
		zap.L().Error("Failed to decode embedded country data", zap.Error(err))
	}
	directory = build(records)
	byCode = make(map[string]models.CountryOption, len(directory))
	for _, c := range directory {
		byCode[c.Code] = c
	}
}

// List returns the country directory sorted by French display name.
func List() []models.CountryOption {
	directoryOnce.Do(load)
	out := make([]models.CountryOption, len(directory))
	copy(out, directory)
	return out
}

// FindCountry looks a country up by its two-letter code, ignoring case.
func FindCountry(code string) (models.CountryOption, bool) {
	directoryOnce.Do(load)
	c, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// build turns raw records into the sorted directory. Records without a
// two-letter code are skipped and the first record wins for a repeated code.
func build(records []countryRecord) []models.CountryOption {
	seen := make(map[string]struct{}, len(records))
	options := make([]models.CountryOption, 0, len(records))
	for _, r := range records {
		code := strings.ToUpper(strings.TrimSpace(r.CCA2))
		if !validCode(code) {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		options = append(options, models.CountryOption{
			Code:     code,
			Name:     displayName(r, code),
			Flag:     Flag(code),
			DialCode: dialCode(r),
		})
	}

	col := collate.New(language.French, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(options, func(i, j int) bool {
		return col.CompareString(options[i].Name, options[j].Name) < 0
	})
	return options
}

func validCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func displayName(r countryRecord, code string) string {
	if t, ok := r.Translations["fra"]; ok && strings.TrimSpace(t.Common) != "" {
		return t.Common
	}
	if t, ok := r.Translations["eng"]; ok && strings.TrimSpace(t.Common) != "" {
		return t.Common
	}
	if strings.TrimSpace(r.Name.Common) != "" {
		return r.Name.Common
	}
	return code
}

// Flag maps a two-letter code to its regional indicator emoji.
func Flag(code string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(code) {
		b.WriteRune(127397 + ch)
	}
	return b.String()
}

func dialCode(r countryRecord) string {
	if r.IDD.Root == "" {
		return ""
	}
	if len(r.IDD.Suffixes) == 0 {
		return r.IDD.Root
	}
	return r.IDD.Root + r.IDD.Suffixes[0]
}
