// Package mapper assigns collected key/value data to known placeholders,
// tolerating key-naming variance across case, separators, language variants
// and small misspellings.
package mapper

import (
	"sort"
	"strings"

	"github.com/rezonia/docgen/internal/placeholder"
)

// DefaultFuzzyThreshold is the similarity a fuzzy candidate must strictly
// exceed to be accepted.
const DefaultFuzzyThreshold = 0.7

// variantAliases links normalized Vietnamese field names with common
// equivalents (English names and frequent shorthand). Both directions are
// consulted.
var variantAliases = map[string][]string{
	"ten":          {"name", "ho_ten", "ho_va_ten", "full_name"},
	"ho_ten":       {"ten", "name", "full_name", "ho_va_ten"},
	"dia_chi":      {"address", "dia_chi_lien_he"},
	"ngay_thang":   {"date", "ngay", "ngay_thang_nam"},
	"ngay":         {"date", "ngay_thang"},
	"so_van_ban":   {"so", "document_number", "so_hieu"},
	"so":           {"number", "so_van_ban"},
	"ten_co_quan":  {"co_quan", "organization", "ten_to_chuc", "ten_don_vi"},
	"ten_cong_ty":  {"cong_ty", "company", "company_name"},
	"chuc_vu":      {"position", "title"},
	"nguoi_ky":     {"signer", "nguoi_dai_dien"},
	"dien_thoai":   {"phone", "sdt", "so_dien_thoai"},
	"email":        {"thu_dien_tu", "mail"},
	"ma_so_thue":   {"tax_id", "mst"},
	"noi_nhan":     {"recipients", "recipient"},
	"trich_yeu":    {"subject", "tieu_de"},
	"nam":          {"year"},
	"dia_diem":     {"place", "location", "noi_lap"},
	"nguoi_lap":    {"author", "nguoi_soan"},
	"ly_do":        {"reason"},
	"noi_dung":     {"content", "body"},
	"can_cu":       {"basis", "can_cu_phap_ly"},
	"kinh_gui":     {"to", "noi_gui"},
	"quoc_hieu":    {"national_title"},
	"chuc_danh":    {"chuc_vu", "position"},
	"don_vi":       {"department", "bo_phan", "ten_don_vi"},
	"tinh_thanh":   {"province", "thanh_pho"},
	"quan_huyen":   {"district", "huyen"},
	"phuong_xa":    {"ward", "xa"},
	"ngay_sinh":    {"birthday", "date_of_birth"},
	"gioi_tinh":    {"gender", "sex"},
	"cmnd":         {"cccd", "so_cmnd", "so_cccd", "id_number"},
	"que_quan":     {"hometown", "nguyen_quan"},
	"nghe_nghiep":  {"occupation", "job"},
	"muc_dich":     {"purpose"},
	"thoi_gian":    {"time", "thoi_han"},
	"so_luong":     {"quantity", "amount"},
	"thanh_tien":   {"total", "tong_tien"},
	"ghi_chu":      {"note", "notes"},
	"nguoi_nhan":   {"receiver", "ben_nhan"},
	"nguoi_gui":    {"sender", "ben_gui"},
	"chu_ky":       {"signature"},
	"ban_hanh":     {"issued"},
	"hieu_luc":     {"effective"},
	"tieu_de":      {"title", "trich_yeu"},
	"bao_cao":      {"report", "noi_dung_bao_cao"},
	"hoat_dong":    {"activity", "noi_dung_hoat_dong"},
	"ket_qua":      {"result", "ket_qua_thuc_hien"},
	"kien_nghi":    {"recommendation", "de_xuat"},
	"phuong_huong": {"direction", "ke_hoach"},
}

// Plan is the final token -> value assignment.
type Plan struct {
	// Values maps placeholder tokens to their sanitized substitution values.
	Values map[string]string
	// Matched counts placeholders that received a value.
	Matched int
	// Failed counts placeholders left unassigned (generated blank).
	Failed int
	// Skipped counts collected-data keys that matched no placeholder.
	Skipped int
}

// Mapper builds replacement plans.
type Mapper struct {
	fuzzyThreshold float64
}

// Option configures the mapper
type Option func(*Mapper)

// WithFuzzyThreshold overrides the fuzzy-match similarity threshold.
func WithFuzzyThreshold(th float64) Option {
	return func(m *Mapper) {
		m.fuzzyThreshold = th
	}
}

// New creates a mapper.
func New(opts ...Option) *Mapper {
	m := &Mapper{fuzzyThreshold: DefaultFuzzyThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map assigns collected data to known placeholders (token -> normalized key).
// For each placeholder it tries, in order: exact match, loose
// (case/underscore/hyphen-insensitive) match, variant-dictionary match, and
// fuzzy match above the threshold. Unmatched placeholders are not errors;
// they show up in Plan.Failed. Pure function over its inputs.
func (m *Mapper) Map(data map[string]string, placeholders map[string]string) *Plan {
	plan := &Plan{Values: make(map[string]string, len(placeholders))}

	// Index data keys by their normalized and loose forms.
	byNormalized := make(map[string]string, len(data))
	byLoose := make(map[string]string, len(data))
	used := make(map[string]bool, len(data))
	for k := range data {
		nk := placeholder.NormalizeKey(k)
		if prev, ok := byNormalized[nk]; !ok || preferKey(k, prev, nk) {
			byNormalized[nk] = k
		}
		lk := looseKey(k)
		if prev, ok := byLoose[lk]; !ok || k < prev {
			byLoose[lk] = k
		}
	}

	for token, key := range placeholders {
		dataKey, ok := m.resolve(key, data, byNormalized, byLoose)
		if !ok {
			plan.Failed++
			continue
		}
		plan.Values[token] = Sanitize(data[dataKey])
		plan.Matched++
		used[dataKey] = true
	}

	for k := range data {
		if !used[k] {
			plan.Skipped++
		}
	}

	return plan
}

func (m *Mapper) resolve(key string, data map[string]string, byNormalized, byLoose map[string]string) (string, bool) {
	// (a) exact match against a collected-data key.
	if _, ok := data[key]; ok {
		return key, true
	}
	if dk, ok := byNormalized[key]; ok {
		return dk, true
	}

	// (b) case/underscore/hyphen-insensitive match.
	if dk, ok := byLoose[looseKey(key)]; ok {
		return dk, true
	}

	// (c) language-variant match via the built-in dictionary.
	for _, alias := range variantAliases[key] {
		if dk, ok := byNormalized[alias]; ok {
			return dk, true
		}
	}
	normForms := make([]string, 0, len(byNormalized))
	for dataNorm := range byNormalized {
		normForms = append(normForms, dataNorm)
	}
	sort.Strings(normForms)
	for _, dataNorm := range normForms {
		for _, alias := range variantAliases[dataNorm] {
			if alias == key {
				return byNormalized[dataNorm], true
			}
		}
	}

	// (d) fuzzy match by normalized edit-distance similarity.
	best := ""
	bestScore := 0.0
	for _, dataNorm := range normForms {
		score := Similarity(key, dataNorm)
		if score > bestScore {
			bestScore = score
			best = byNormalized[dataNorm]
		}
	}
	if bestScore > m.fuzzyThreshold {
		return best, true
	}

	return "", false
}

// preferKey keeps the candidate index deterministic when several data keys
// share a normalized form: an already-normalized key wins, then the
// lexicographically smallest.
func preferKey(candidate, current, normalized string) bool {
	if current == normalized {
		return false
	}
	if candidate == normalized {
		return true
	}
	return candidate < current
}

// looseKey lowers case and removes underscores and hyphens so "TenCongTy",
// "ten_cong_ty" and "ten-cong-ty" compare equal.
func looseKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// Similarity is a normalized Levenshtein similarity in [0,1]:
// 1 - distance/maxLen. Identical strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
