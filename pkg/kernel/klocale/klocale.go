// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package klocale implements the kernel's locale cache (C7): measurement
// system, language, and numeric/monetary/date-time formatting fields loaded
// once from the host environment and held for the life of the process.
package klocale

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// MeasurementSystem is the closed enumeration of unit systems a locale can
// report.
type MeasurementSystem int

const (
	MeasurementUnknown MeasurementSystem = iota
	MeasurementMetric
	MeasurementUS
)

func (m MeasurementSystem) String() string {
	switch m {
	case MeasurementMetric:
		return "Metric"
	case MeasurementUS:
		return "US"
	default:
		return "Unknown"
	}
}

// Language is the closed set of languages the cache maps a host locale tag
// down to. Locales outside this set resolve to LanguageUnknown rather than
// failing — matching the host string passing through best-effort.
type Language int

const (
	LanguageUnknown Language = iota
	LanguageEnglish
	LanguageFrench
	LanguageGerman
	LanguageSpanish
	LanguageItalian
	LanguagePortuguese
	LanguageDutch
	LanguageJapanese
	LanguageChineseSimplified
	LanguageChineseTraditional
	LanguageKorean
	LanguageRussian
)

var languageNames = map[Language]string{
	LanguageUnknown:            "Unknown",
	LanguageEnglish:            "English",
	LanguageFrench:             "French",
	LanguageGerman:             "German",
	LanguageSpanish:            "Spanish",
	LanguageItalian:            "Italian",
	LanguagePortuguese:         "Portuguese",
	LanguageDutch:              "Dutch",
	LanguageJapanese:           "Japanese",
	LanguageChineseSimplified:  "ChineseSimplified",
	LanguageChineseTraditional: "ChineseTraditional",
	LanguageKorean:             "Korean",
	LanguageRussian:            "Russian",
}

func (l Language) String() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return "Unknown"
}

// baseLanguageTable maps an ISO-639-1 base subtag to the closed Language
// enumeration. Regional/script variants fold to the same base language;
// Chinese is the one case split by script.
var baseLanguageTable = map[string]Language{
	"en": LanguageEnglish,
	"fr": LanguageFrench,
	"de": LanguageGerman,
	"es": LanguageSpanish,
	"it": LanguageItalian,
	"pt": LanguagePortuguese,
	"nl": LanguageDutch,
	"ja": LanguageJapanese,
	"ko": LanguageKorean,
	"ru": LanguageRussian,
}

// resolveLanguage maps a BCP-47 tag (as produced by language.Parse on the
// host's LANG/LC_ALL string) down to the closed enumeration.
func resolveLanguage(tag language.Tag) Language {
	base, conf := tag.Base()
	if conf == language.No {
		return LanguageUnknown
	}
	code := base.String()
	if code == "zh" {
		script, _ := tag.Script()
		if script.String() == "Hant" {
			return LanguageChineseTraditional
		}
		return LanguageChineseSimplified
	}
	if l, ok := baseLanguageTable[code]; ok {
		return l
	}
	return LanguageUnknown
}

// NumericFormat is the set of fields governing plain-number rendering.
type NumericFormat struct {
	Digits         int
	GroupSize      int
	DecimalSymbol  string
	GroupSeparator string
	PositiveSign   string
	NegativeSign   string
}

// MonetaryFormat is the set of fields governing currency rendering. Positive
// and negative format are format strings using the placeholders %(v) (value),
// %(y) (currency symbol), and %(s) (sign) — see FormatCurrency in format.go.
type MonetaryFormat struct {
	Digits          int
	GroupSize       int
	DecimalSymbol   string
	GroupSeparator  string
	CurrencySymbol  string
	PositiveFormat  string
	NegativeFormat  string
}

// DateTimeFormat is the set of fields governing date/time rendering, already
// translated into the internal format alphabet (see format.go).
type DateTimeFormat struct {
	DateSeparator   string
	TimeSeparator   string
	AMString        string
	PMString        string
	ShortDateFormat string
	TimeFormat      string
}

// Cache is the process-wide locale cache. Call NewCache and then Load, or
// rely on the getters, which load lazily.
type Cache struct {
	group singleflight.Group
	mu    sync.RWMutex
	ready bool

	measurement MeasurementSystem
	defaultLang Language
	currentLang Language
	numeric     NumericFormat
	monetary    MonetaryFormat
	dateTime    DateTimeFormat
}

// NewCache returns an empty, unloaded cache.
func NewCache() *Cache {
	return &Cache{}
}

// Load populates the cache from the host environment exactly once; repeated
// calls are no-ops once the first completes. Concurrent first calls
// collapse onto a single loader via singleflight, the same lazy-init idiom
// used for the CRC-32 table.
func (c *Cache) Load() error {
	c.mu.RLock()
	if c.ready {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("load", func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.ready {
			return nil, nil
		}
		loadFromEnvironment(c)
		c.ready = true
		return nil, nil
	})
	return err
}

func loadFromEnvironment(c *Cache) {
	langEnv := firstNonEmpty(os.Getenv("LC_ALL"), os.Getenv("LANG"), "en_US.UTF-8")
	localeName := strings.SplitN(langEnv, ".", 2)[0]
	tag, err := language.Parse(strings.ReplaceAll(localeName, "_", "-"))
	lang := LanguageUnknown
	if err == nil {
		lang = resolveLanguage(tag)
	}
	c.defaultLang = lang
	c.currentLang = lang

	c.measurement = measurementHeuristic(localeName)

	c.numeric = NumericFormat{
		Digits:         2,
		GroupSize:      3,
		DecimalSymbol:  ".",
		GroupSeparator: ",",
		PositiveSign:   "",
		NegativeSign:   "-",
	}
	if c.measurement == MeasurementMetric {
		c.numeric.DecimalSymbol = ","
		c.numeric.GroupSeparator = "."
	}

	c.monetary = MonetaryFormat{
		Digits:         2,
		GroupSize:      3,
		DecimalSymbol:  c.numeric.DecimalSymbol,
		GroupSeparator: c.numeric.GroupSeparator,
		CurrencySymbol: currencySymbolFor(localeName),
		PositiveFormat: "%(y)%(v)",
		NegativeFormat: "%(s)%(y)%(v)",
	}

	c.dateTime = DateTimeFormat{
		DateSeparator:   "/",
		TimeSeparator:   ":",
		AMString:        "AM",
		PMString:        "PM",
		ShortDateFormat: TranslateHostFormat("%m/%d/%Y"),
		TimeFormat:      TranslateHostFormat("%H:%M:%S"),
	}
	if c.measurement == MeasurementMetric {
		c.dateTime.DateSeparator = "."
		c.dateTime.ShortDateFormat = TranslateHostFormat("%d.%m.%Y")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// measurementHeuristic guesses the measurement system from a POSIX locale
// name, since there is no dedicated libc field for it the way Windows
// exposes LOCALE_IMEASURE. US and a handful of other territories use the
// imperial system; everything else defaults to metric.
func measurementHeuristic(localeName string) MeasurementSystem {
	upper := strings.ToUpper(localeName)
	for _, territory := range []string{"US", "LR", "MM"} {
		if strings.HasSuffix(upper, "_"+territory) || strings.HasSuffix(upper, "-"+territory) {
			return MeasurementUS
		}
	}
	return MeasurementMetric
}

func currencySymbolFor(localeName string) string {
	upper := strings.ToUpper(localeName)
	switch {
	case strings.Contains(upper, "US"), strings.Contains(upper, "EN_US"):
		return "$"
	case strings.Contains(upper, "GB"):
		return "£"
	case strings.Contains(upper, "JP"):
		return "¥"
	default:
		return "€"
	}
}

// Measurement returns the cached measurement system, loading first if
// needed.
func (c *Cache) Measurement() MeasurementSystem {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.measurement
}

// DefaultLanguage returns the host's default (install) language.
func (c *Cache) DefaultLanguage() Language {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultLang
}

// CurrentLanguage returns the process's current language, which starts
// equal to DefaultLanguage but may be overridden by SetCurrentLanguage.
func (c *Cache) CurrentLanguage() Language {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentLang
}

// SetCurrentLanguage overrides the process's current language without
// touching DefaultLanguage.
func (c *Cache) SetCurrentLanguage(l Language) {
	_ = c.Load()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentLang = l
}

// Numeric returns the cached numeric format fields.
func (c *Cache) Numeric() NumericFormat {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numeric
}

// Monetary returns the cached monetary format fields.
func (c *Cache) Monetary() MonetaryFormat {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.monetary
}

// DateTime returns the cached date/time format fields.
func (c *Cache) DateTime() DateTimeFormat {
	_ = c.Load()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dateTime
}

// DayName returns the full day name for weekday (0=Sunday..6=Saturday),
// fetched on demand rather than cached.
func DayName(weekday int) string {
	return dayNames[((weekday%7)+7)%7]
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// MonthName returns the full month name for month (1=January..12=December),
// fetched on demand rather than cached.
func MonthName(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("klocale: month %d out of range", month)
	}
	return monthNames[month-1], nil
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}
