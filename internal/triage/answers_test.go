package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		input string
		value bool
		ok    bool
	}{
		{"sim", true, true},
		{"SIM", true, true},
		{"s", true, true},
		{"yes", true, true},
		{"y", true, true},
		{"1", true, true},
		{"não", false, true},
		{"nao", false, true},
		{"NÃO", false, true},
		{"n", false, true},
		{"no", false, true},
		{"0", false, true},
		{"  sim  ", true, true},
		{"talvez", false, false},
		{"sim, com certeza", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parseYesNo(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		input string
		value int
		ok    bool
	}{
		{"0", 0, true},
		{"4", 4, true},
		{" 2 ", 2, true},
		{"5", 0, false},
		{"-1", 0, false},
		{"five", 0, false},
		{"dois", 0, false},
		{"2.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parseScale(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestExtractNationalID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"formatted", "meu cpf é 123.456.789-09", "12345678909", true},
		{"bare digits", "12345678909", "12345678909", true},
		{"partial punctuation", "123456.789-09", "12345678909", true},
		{"too short", "123.456.78", "", false},
		{"no digits", "não tenho aqui", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractNationalID(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"mobile with area", "(11) 91234-5678", "11912345678", true},
		{"landline", "11 3456-7890", "1134567890", true},
		{"bare digits", "11912345678", "11912345678", true},
		{"embedded in text", "me liga no (21) 98765-4321 por favor", "21987654321", true},
		{"too short", "1234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractPhone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"two tokens", "Maria Silva", "Maria Silva", true},
		{"three tokens", "José da Costa", "José da Costa", true},
		{"trims whitespace", "  Ana Souza  ", "Ana Souza", true},
		{"single token", "Maria", "", false},
		{"contains digits", "Maria Silva 123", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
