package catalog

// Product is one purchasable item returned by the catalog search.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         int     `json:"price"`
	URL           string  `json:"url"`
	ImageURL      string  `json:"imageUrl"`
	Shop          string  `json:"shop"`
	ReviewAverage float64 `json:"reviewAverage"`
	ReviewCount   int     `json:"reviewCount"`
}

// GroupedResult pairs an originating keyword with its products, in the
// keyword's original position.
type GroupedResult struct {
	Keyword  string    `json:"keyword"`
	Products []Product `json:"products"`
}

// Ebook is one disaster-preparedness e-book from the Kobo search.
type Ebook struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	ImageURL  string `json:"imageUrl"`
	Caption   string `json:"caption"`
	Publisher string `json:"publisher"`
}
