package unsplash

// Photo — карточка фотографии из поисковой выдачи
type Photo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	URLs        struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

type searchResponse struct {
	Results []Photo `json:"results"`
}
