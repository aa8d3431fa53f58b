package typerace

import "math/rand"

// prompts every player in a race types the same text, picked at start
var prompts = []string{
	"The quick brown fox jumps over the lazy dog while the farmer watches from the old wooden fence.",
	"Typing fast is easy, typing fast without mistakes is a completely different kind of challenge.",
	"A small boat drifted down the river, carrying nothing but a lantern and a coil of rope.",
	"Programs must be written for people to read, and only incidentally for machines to execute.",
	"The storm rolled in from the west, turning the afternoon sky the color of wet slate.",
}

func pickPrompt() string {
	return prompts[rand.Intn(len(prompts))]
}
