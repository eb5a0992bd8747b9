// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package klocale

import "strings"

// hostToInternal maps host strftime-style format letters to the internal
// format alphabet's placeholders. Ordered longest-prefix-first isn't needed
// since every host token here is a single rune, but entries are listed in
// the order CIDKernel_Locale_Linux.cpp's table presents them so the mapping
// is easy to audit against that source.
var hostToInternal = map[byte]string{
	'Y': "%(Y)",
	'y': "%(Y,2,0)",
	'm': "%(M,2,0)",
	'd': "%(D,2,0)",
	'H': "%(h,2,0)",
	'I': "%(h,2,0)",
	'M': "%(u,2,0)",
	'S': "%(s,2,0)",
	'p': "%(a)",
}

// TranslateHostFormat translates a strftime-style host format string (the
// `%m/%d/%Y` family) into the internal format alphabet used throughout this
// package (`%(D)`, `%(M,2,0)`, `%(Y)`, ...). Unrecognized `%x` tokens pass
// through their literal host letter; everything else is copied verbatim.
func TranslateHostFormat(host string) string {
	var b strings.Builder
	for i := 0; i < len(host); i++ {
		if host[i] != '%' || i+1 >= len(host) {
			b.WriteByte(host[i])
			continue
		}
		letter := host[i+1]
		if internal, ok := hostToInternal[letter]; ok {
			b.WriteString(internal)
		} else {
			b.WriteByte('%')
			b.WriteByte(letter)
		}
		i++
	}
	return b.String()
}

// FormatCurrency renders value against a MonetaryFormat's positive or
// negative format string, substituting %(v) with value, %(y) with the
// currency symbol, and %(s) with the sign character.
func FormatCurrency(m MonetaryFormat, value string, negative bool) string {
	format := m.PositiveFormat
	sign := ""
	if negative {
		format = m.NegativeFormat
		sign = "-"
	}
	r := strings.NewReplacer(
		"%(v)", value,
		"%(y)", m.CurrencySymbol,
		"%(s)", sign,
	)
	return r.Replace(format)
}
