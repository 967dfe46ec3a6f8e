package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDetector() *Detector {
	return NewDetector([]Profile{
		{Code: English, StopWords: []string{"the", "and", "total", "store", "receipt", "thank", "you"}},
		{Code: Spanish, StopWords: []string{"de", "la", "el", "total", "fecha", "tienda", "gracias"}},
		{Code: French, StopWords: []string{"de", "la", "le", "total", "date", "magasin", "merci"}},
	}, 10)
}

func TestDetector_Detect(t *testing.T) {
	d := testDetector()

	tests := []struct {
		name string
		text string
		want Code
	}{
		{
			name: "english receipt",
			text: "thank you for shopping at the store your receipt total comes to nine",
			want: English,
		},
		{
			name: "spanish receipt",
			text: "gracias por su compra en la tienda el total de la fecha indicada aparece abajo",
			want: Spanish,
		},
		{
			name: "french receipt",
			text: "merci de votre visite au magasin le total de la date est indiqué ci-dessous",
			want: French,
		},
		{
			name: "short text degrades to default",
			text: "gracias tienda total",
			want: English,
		},
		{
			name: "no stop words degrades to default",
			text: "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima",
			want: English,
		},
		{
			name: "tie keeps priority order",
			// "de la total" score equally for Spanish and French; Spanish
			// is declared first.
			text: "de la total de la total de la total de la",
			want: Spanish,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetector_NeverFails(t *testing.T) {
	d := testDetector()
	assert.Equal(t, English, d.Detect(""))
	assert.Equal(t, English, d.Detect("   \n\t  "))
	assert.Equal(t, English, d.Detect("1234 5678 9012"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"total", "due", "éléphant"}, Tokenize("Total: DUE (éléphant)"))
	assert.Empty(t, Tokenize("123 456"))
}
