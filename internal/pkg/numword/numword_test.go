package numword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{13, "Thirteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{305, "Three Hundred Five"},
		{999, "Nine Hundred Ninety Nine"},
		{1000, "One Thousand"},
		{3000, "Three Thousand"},
		{9200, "Nine Thousand Two Hundred"},
		{78000, "Seventy Eight Thousand"},
		{99999, "Ninety Nine Thousand Nine Hundred Ninety Nine"},
		{100000, "One Lakh"},
		{250000, "Two Lakh Fifty Thousand"},
		{1234567, "Twelve Lakh Thirty Four Thousand Five Hundred Sixty Seven"},
		{10000000, "One Crore"},
		{123456789, "Twelve Crore Thirty Four Lakh Fifty Six Thousand Seven Hundred Eighty Nine"},
		{-450, "Minus Four Hundred Fifty"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Words(tt.n))
		})
	}
}
