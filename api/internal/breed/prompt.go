package breed

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ListIntro: предложение перед нумерованным списком; интерпретатор ищет его по шаблону reListIntro.
const ListIntro = "Here are four possible matching dog breeds:"

var ErrInvalidQuery = errors.New("weight and height must be positive numbers")

// Query: атрибуты, которые пользователь прикладывает к фото.
type Query struct {
	WeightLbs float64 `json:"weight"`
	HeightIn  float64 `json:"height"`
}

func (q Query) Validate() error {
	for _, v := range []float64{q.WeightLbs, q.HeightIn} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return ErrInvalidQuery
		}
	}
	return nil
}

var reNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseQuery достаёт "вес рост" из свободного текста: "45 22", "45lbs, 22in", "вес 45 рост 22".
// Первое число: вес, второе: рост.
func ParseQuery(text string) (Query, error) {
	nums := reNumber.FindAllString(text, 3)
	if len(nums) != 2 {
		return Query{}, ErrInvalidQuery
	}
	var vals [2]float64
	for i, n := range nums {
		v, err := strconv.ParseFloat(strings.Replace(n, ",", ".", 1), 64)
		if err != nil {
			return Query{}, ErrInvalidQuery
		}
		vals[i] = v
	}
	q := Query{WeightLbs: vals[0], HeightIn: vals[1]}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// BuildPrompt returns the instruction sent to the model together with the photo.
// Weight and height go in as plain decimal text.
func BuildPrompt(q Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identify the dog breed by the image, weight: %s lbs, height: %s inches, provided ",
		formatNumber(q.WeightLbs), formatNumber(q.HeightIn))
	b.WriteString("and return a summary of the dog breed provided that is four sentences long.\n")
	fmt.Fprintf(&b, "Also, below the summary return the sentence %q followed by a numbered list of "+
		"four different dog breeds that match it. Do not include the identified breed in the list. "+
		"Provide an evenly distributed percentage for each dog so that total for the four listed breeds equals 100%%.\n", ListIntro)
	b.WriteString("Separate the summary and the list with one blank line.\n")
	b.WriteString("Ex:\n")
	for i, n := range []string{"A", "B", "C", "D"} {
		fmt.Fprintf(&b, "%d. Dog Breed %s (X%%)\n", i+1, n)
	}
	fmt.Fprintf(&b, "\nIf the image provided does not match a dog, return only the following statement %q", RejectionSentinel)
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
