package protocol

import (
	"crypto/sha1"
	"fmt"
	"math/big"
	"strings"
)

// LanguageCode identifies an IronOS UI translation. The firmware stores the SHA-1 digest of the
// translation code, read as a big-endian integer, modulo 0xFFFF.
type LanguageCode uint16

const (
	LanguageBE     LanguageCode = 60301
	LanguageBG     LanguageCode = 15395
	LanguageCS     LanguageCode = 36791
	LanguageDA     LanguageCode = 63942
	LanguageDE     LanguageCode = 5496
	LanguageEL     LanguageCode = 5003
	LanguageEN     LanguageCode = 41431
	LanguageES     LanguageCode = 38713
	LanguageET     LanguageCode = 18074
	LanguageFI     LanguageCode = 25411
	LanguageFR     LanguageCode = 38783
	LanguageHR     LanguageCode = 49773
	LanguageHU     LanguageCode = 19902
	LanguageIT     LanguageCode = 57867
	LanguageJAJP   LanguageCode = 2385
	LanguageLT     LanguageCode = 5183
	LanguageNB     LanguageCode = 31043
	LanguageNL     LanguageCode = 22266
	LanguageNLBE   LanguageCode = 55046
	LanguagePL     LanguageCode = 55968
	LanguagePT     LanguageCode = 56922
	LanguageRO     LanguageCode = 61480
	LanguageRU     LanguageCode = 26979
	LanguageSK     LanguageCode = 13916
	LanguageSL     LanguageCode = 21931
	LanguageSRCYRL LanguageCode = 41427
	LanguageSRLATN LanguageCode = 61017
	LanguageSV     LanguageCode = 65456
	LanguageTR     LanguageCode = 9120
	LanguageUK     LanguageCode = 29374
	LanguageVI     LanguageCode = 20758
	LanguageYUEHK  LanguageCode = 17119
	LanguageZHCN   LanguageCode = 44731
	LanguageZHTW   LanguageCode = 34289
)

var languageNames = map[LanguageCode]string{
	LanguageBE:     "BE",
	LanguageBG:     "BG",
	LanguageCS:     "CS",
	LanguageDA:     "DA",
	LanguageDE:     "DE",
	LanguageEL:     "EL",
	LanguageEN:     "EN",
	LanguageES:     "ES",
	LanguageET:     "ET",
	LanguageFI:     "FI",
	LanguageFR:     "FR",
	LanguageHR:     "HR",
	LanguageHU:     "HU",
	LanguageIT:     "IT",
	LanguageJAJP:   "JA_JP",
	LanguageLT:     "LT",
	LanguageNB:     "NB",
	LanguageNL:     "NL",
	LanguageNLBE:   "NL_BE",
	LanguagePL:     "PL",
	LanguagePT:     "PT",
	LanguageRO:     "RO",
	LanguageRU:     "RU",
	LanguageSK:     "SK",
	LanguageSL:     "SL",
	LanguageSRCYRL: "SR_CYRL",
	LanguageSRLATN: "SR_LATN",
	LanguageSV:     "SV",
	LanguageTR:     "TR",
	LanguageUK:     "UK",
	LanguageVI:     "VI",
	LanguageYUEHK:  "YUE_HK",
	LanguageZHCN:   "ZH_CN",
	LanguageZHTW:   "ZH_TW",
}

var languageModulus = big.NewInt(0xFFFF)

// LanguageFromCode hashes a translation code such as "EN" or "ZH_CN" the way IronOS does.
// The code is used verbatim, so callers are responsible for its case.
func LanguageFromCode(code string) LanguageCode {
	digest := sha1.Sum([]byte(code))
	n := new(big.Int).SetBytes(digest[:])
	return LanguageCode(n.Mod(n, languageModulus).Uint64())
}

// Known reports whether c is one of the translations shipped with IronOS.
func (c LanguageCode) Known() bool {
	_, ok := languageNames[c]
	return ok
}

func (c LanguageCode) String() string {
	if name, ok := languageNames[c]; ok {
		return name
	}
	return fmt.Sprintf("LanguageCode(%d)", uint16(c))
}

func (c LanguageCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// parseLanguage accepts a known translation name in any case, falling back to hashing the
// string as given.
func parseLanguage(s string) LanguageCode {
	s = strings.TrimSpace(s)
	for code, name := range languageNames {
		if strings.EqualFold(name, s) {
			return code
		}
	}
	return LanguageFromCode(s)
}
