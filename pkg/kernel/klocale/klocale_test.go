// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package klocale_test

import (
	"testing"

	"github.com/antimetal/oskernel/pkg/kernel/klocale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIsIdempotent(t *testing.T) {
	c := klocale.NewCache()
	require.NoError(t, c.Load())
	first := c.Numeric()
	require.NoError(t, c.Load())
	assert.Equal(t, first, c.Numeric())
}

func TestGettersLoadLazily(t *testing.T) {
	c := klocale.NewCache()
	// No explicit Load call: getters must fault the cache in themselves.
	assert.NotEqual(t, klocale.MeasurementSystem(-1), c.Measurement())
}

func TestCurrentLanguageOverride(t *testing.T) {
	c := klocale.NewCache()
	require.NoError(t, c.Load())
	c.SetCurrentLanguage(klocale.LanguageFrench)
	assert.Equal(t, klocale.LanguageFrench, c.CurrentLanguage())
}

func TestDayAndMonthNamesNotCached(t *testing.T) {
	assert.Equal(t, "Sunday", klocale.DayName(0))
	assert.Equal(t, "Saturday", klocale.DayName(6))
	assert.Equal(t, "Sunday", klocale.DayName(7))

	name, err := klocale.MonthName(1)
	require.NoError(t, err)
	assert.Equal(t, "January", name)

	_, err = klocale.MonthName(13)
	assert.Error(t, err)
}

func TestTranslateHostFormat(t *testing.T) {
	assert.Equal(t, "%(M,2,0)/%(D,2,0)/%(Y)", klocale.TranslateHostFormat("%m/%d/%Y"))
	assert.Equal(t, "%(h,2,0):%(u,2,0):%(s,2,0)", klocale.TranslateHostFormat("%H:%M:%S"))
}

func TestFormatCurrency(t *testing.T) {
	m := klocale.MonetaryFormat{
		CurrencySymbol: "$",
		PositiveFormat: "%(y)%(v)",
		NegativeFormat: "%(s)%(y)%(v)",
	}
	assert.Equal(t, "$10.00", klocale.FormatCurrency(m, "10.00", false))
	assert.Equal(t, "-$10.00", klocale.FormatCurrency(m, "10.00", true))
}

func TestLanguageStringFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", klocale.Language(999).String())
}
