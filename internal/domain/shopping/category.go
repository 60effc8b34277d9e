package shopping

// Category tags one requested product type.
type Category string

const (
	CategoryJacket          Category = "jacket"
	CategoryPants           Category = "pants"
	CategoryBaseLayerTop    Category = "base_layer_top"
	CategoryBaseLayerBottom Category = "base_layer_bottom"
	CategoryGloves          Category = "gloves"
	CategoryGoggles         Category = "goggles"
	CategoryHelmet          Category = "helmet"
	CategorySocks           Category = "socks"
	CategoryNeckGaiter      Category = "neck_gaiter"
	CategoryHeadset         Category = "headset"
	CategoryMonitor         Category = "monitor"
	CategoryKeyboard        Category = "keyboard"
	CategoryLaptop          Category = "laptop"
	CategoryRunningShoes    Category = "running_shoes"
	CategorySneakers        Category = "sneakers"
	CategoryTShirt          Category = "t_shirt"
	CategoryHoodie          Category = "hoodie"
	CategoryBag             Category = "bag"
	CategoryWatch           Category = "watch"
	CategoryDeskChair       Category = "desk_chair"
	CategoryWebcam          Category = "webcam"
	CategoryPhone           Category = "phone"
	CategoryTablet          Category = "tablet"
	CategorySpeakers        Category = "speakers"
	CategoryGPU             Category = "gpu"
	CategorySnacks          Category = "snacks"
	CategoryBadges          Category = "badges"
	CategoryAdapters        Category = "adapters"
	CategoryDecorations     Category = "decorations"
	CategoryPrizes          Category = "prizes"
	CategoryCustom          Category = "custom"
)

var knownCategories = map[Category]struct{}{
	CategoryJacket: {}, CategoryPants: {}, CategoryBaseLayerTop: {}, CategoryBaseLayerBottom: {},
	CategoryGloves: {}, CategoryGoggles: {}, CategoryHelmet: {}, CategorySocks: {}, CategoryNeckGaiter: {},
	CategoryHeadset: {}, CategoryMonitor: {}, CategoryKeyboard: {}, CategoryLaptop: {},
	CategoryRunningShoes: {}, CategorySneakers: {}, CategoryTShirt: {}, CategoryHoodie: {},
	CategoryBag: {}, CategoryWatch: {}, CategoryDeskChair: {}, CategoryWebcam: {}, CategoryPhone: {},
	CategoryTablet: {}, CategorySpeakers: {}, CategoryGPU: {}, CategorySnacks: {}, CategoryBadges: {},
	CategoryAdapters: {}, CategoryDecorations: {}, CategoryPrizes: {}, CategoryCustom: {},
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	_, ok := knownCategories[c]
	return ok
}

// Words renders the category for prompts and search queries.
func (c Category) Words() string {
	out := []byte(c)
	for i, b := range out {
		if b == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}

// Priority decides ranking order between categories.
type Priority string

const (
	PriorityMustHave   Priority = "must_have"
	PriorityNiceToHave Priority = "nice_to_have"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityMustHave || p == PriorityNiceToHave
}
