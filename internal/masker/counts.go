package masker

import "fmt"

// Counts tallies words seen and placeholders emitted per category. Counts
// from volleys are added into dialogs, dialogs into files and files into a
// run.
type Counts struct {
	Words      int64 `json:"words"`
	MaskedBad  int64 `json:"maskedBad"`
	MaskedGeo  int64 `json:"maskedGeo"`
	MaskedMisc int64 `json:"maskedMisc"`
	MaskedName int64 `json:"maskedName"`
	MaskedNum  int64 `json:"maskedNum"`
	MaskedURL  int64 `json:"maskedURL"`
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Words += o.Words
	c.MaskedBad += o.MaskedBad
	c.MaskedGeo += o.MaskedGeo
	c.MaskedMisc += o.MaskedMisc
	c.MaskedName += o.MaskedName
	c.MaskedNum += o.MaskedNum
	c.MaskedURL += o.MaskedURL
}

// Masked is the number of masked words across all categories.
func (c Counts) Masked() int64 {
	return c.MaskedBad + c.MaskedGeo + c.MaskedMisc + c.MaskedName + c.MaskedNum + c.MaskedURL
}

// Pct formats the masked share of words, e.g. "12.50%".
func (c Counts) Pct() string {
	if c.Words == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(c.Masked())/float64(c.Words))
}

// ByCategory returns the masked counts keyed by category.
func (c Counts) ByCategory() map[Category]int64 {
	return map[Category]int64{
		CategoryBad:  c.MaskedBad,
		CategoryGeo:  c.MaskedGeo,
		CategoryMisc: c.MaskedMisc,
		CategoryName: c.MaskedName,
		CategoryNum:  c.MaskedNum,
		CategoryURL:  c.MaskedURL,
	}
}

func (c *Counts) word() {
	if c != nil {
		c.Words++
	}
}

func (c *Counts) masked(cat Category) {
	if c == nil {
		return
	}
	switch cat {
	case CategoryBad:
		c.MaskedBad++
	case CategoryGeo:
		c.MaskedGeo++
	case CategoryMisc:
		c.MaskedMisc++
	case CategoryName:
		c.MaskedName++
	case CategoryNum:
		c.MaskedNum++
	case CategoryURL:
		c.MaskedURL++
	}
}
