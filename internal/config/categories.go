package config

// CategoryWeights orders command categories in help output and the README.
var CategoryWeights = map[string]int{
	"🕯️ Information":    0,
	"🌍 Worldstate":      10,
	"🧩 Custom Commands": 20,
	"⚙️ Settings":       50,
}
