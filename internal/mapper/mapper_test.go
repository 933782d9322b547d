package mapper_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/docgen/internal/mapper"
)

func TestMap_ExactMatch(t *testing.T) {
	m := mapper.New()

	plan := m.Map(
		map[string]string{"so_van_ban": "01/BC-ABC"},
		map[string]string{"${so_van_ban}": "so_van_ban"},
	)

	assert.Equal(t, "01/BC-ABC", plan.Values["${so_van_ban}"])
	assert.Equal(t, 1, plan.Matched)
	assert.Zero(t, plan.Failed)
}

func TestMap_ExactBeatsFuzzy(t *testing.T) {
	m := mapper.New()

	// Both a camel-case variant and the exact key are present; the exact
	// normalized match must win over any looser candidate.
	plan := m.Map(
		map[string]string{
			"TenCongTy":   "WRONG",
			"ten_cong_ty": "Công ty TNHH ABC",
		},
		map[string]string{"${ten_cong_ty}": "ten_cong_ty"},
	)

	assert.Equal(t, "Công ty TNHH ABC", plan.Values["${ten_cong_ty}"])
}

func TestMap_LooseMatch(t *testing.T) {
	m := mapper.New()

	plan := m.Map(
		map[string]string{"Ten-Cong-Ty": "ABC Corp"},
		map[string]string{"${ten_cong_ty}": "ten_cong_ty"},
	)

	assert.Equal(t, "ABC Corp", plan.Values["${ten_cong_ty}"])
}

func TestMap_VariantDictionary(t *testing.T) {
	m := mapper.New()

	plan := m.Map(
		map[string]string{"address": "123 Lê Lợi, Quận 1"},
		map[string]string{"${dia_chi}": "dia_chi"},
	)

	assert.Equal(t, "123 Lê Lợi, Quận 1", plan.Values["${dia_chi}"])
}

func TestMap_VariantDictionary_Reverse(t *testing.T) {
	m := mapper.New()

	// Data holds the Vietnamese key, placeholder uses the English variant.
	plan := m.Map(
		map[string]string{"dia_chi": "456 Trần Hưng Đạo"},
		map[string]string{"${address}": "address"},
	)

	assert.Equal(t, "456 Trần Hưng Đạo", plan.Values["${address}"])
}

func TestMap_FuzzyMatch(t *testing.T) {
	m := mapper.New()

	plan := m.Map(
		map[string]string{"so_van_bann": "02/QD-XYZ"}, // one-rune typo
		map[string]string{"${so_van_ban}": "so_van_ban"},
	)

	assert.Equal(t, "02/QD-XYZ", plan.Values["${so_van_ban}"])
}

func TestMap_UnmatchedIsCountedNotFatal(t *testing.T) {
	m := mapper.New()

	plan := m.Map(
		map[string]string{"unrelated": "value"},
		map[string]string{"${noi_dung_hop}": "noi_dung_hop"},
	)

	assert.Empty(t, plan.Values)
	assert.Equal(t, 1, plan.Failed)
	assert.Equal(t, 1, plan.Skipped)
}

func TestMap_Deterministic(t *testing.T) {
	m := mapper.New()
	data := map[string]string{"ten": "Nguyễn Văn A", "ngay": "01/01/2025"}
	phs := map[string]string{"${ten}": "ten", "${ngay}": "ngay"}

	first := m.Map(data, phs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Values, m.Map(data, phs).Values)
	}
}

func TestSimilarity_ThresholdBoundary(t *testing.T) {
	// Similarity exactly 0.70 must NOT match (strict >); above must.
	// "aaaaaaaaaa" vs "aaaaaaabbb": distance 3 over max len 10 = 0.70.
	exact := mapper.Similarity("aaaaaaaaaa", "aaaaaaabbb")
	require.InDelta(t, 0.70, exact, 1e-9)

	m := mapper.New()
	plan := m.Map(
		map[string]string{"aaaaaaabbb": "v"},
		map[string]string{"${x}": "aaaaaaaaaa"},
	)
	assert.Empty(t, plan.Values, "similarity exactly at threshold must not match")

	// Distance 2 over max len 10 = 0.80 > 0.70.
	plan = m.Map(
		map[string]string{"aaaaaaaabb": "v"},
		map[string]string{"${x}": "aaaaaaaaaa"},
	)
	assert.Equal(t, "v", plan.Values["${x}"])
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, mapper.Similarity("abc", "abc"))
	assert.Equal(t, 1.0, mapper.Similarity("", ""))
	assert.Equal(t, 0.0, mapper.Similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, mapper.Similarity("abcd", "abcx"), 1e-9)
}

func TestWithFuzzyThreshold(t *testing.T) {
	strict := mapper.New(mapper.WithFuzzyThreshold(0.95))

	plan := strict.Map(
		map[string]string{"so_van_bann": "v"},
		map[string]string{"${so_van_ban}": "so_van_ban"},
	)
	assert.Empty(t, plan.Values)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Số 01/BC-ABC", "Số 01/BC-ABC"},
		{"markdown emphasis", "**bold** and _italic_", "bold and italic"},
		{"markdown heading", "# Tiêu đề\nnội dung", "Tiêu đề\nnội dung"},
		{"markdown link", "xem [trang chủ](https://example.com) nhé", "xem trang chủ nhé"},
		{"html tags", "<p>đoạn văn</p>", "đoạn văn"},
		{"collapse spaces", "a   b\t\tc", "a b c"},
		{"keep paragraph breaks", "đoạn một\n\nđoạn hai", "đoạn một\n\nđoạn hai"},
		{"squash excess blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"trim", "  x  ", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapper.Sanitize(tt.input))
		})
	}
}

func TestSanitize_CapsLength(t *testing.T) {
	long := strings.Repeat("x", mapper.DefaultMaxValueRunes+100)
	assert.Len(t, mapper.Sanitize(long), mapper.DefaultMaxValueRunes)
}
