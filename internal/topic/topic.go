// Package topic holds the fixed catalog of fun-fact categories.
package topic

import (
	"math/rand"

	"github.com/gnzdotmx/pequebum/internal/utils"
)

// Topic is a category and the instruction sent to the text model for it
type Topic struct {
	Category       string `json:"category"`
	PromptTemplate string `json:"promptTemplate"`
}

// ColorCatalog is used by the flat color variant
var ColorCatalog = []Topic{
	{Category: "Animales", PromptTemplate: "Dato curioso sobre un animal poco común para niños."},
	{Category: "Espacio", PromptTemplate: "Dato asombroso sobre planetas o estrellas."},
	{Category: "Cuerpo Humano", PromptTemplate: "Algo increíble que hace nuestro cuerpo cada día."},
	{Category: "Naturaleza", PromptTemplate: "Dato curioso sobre plantas o el clima."},
	{Category: "Dinosaurios", PromptTemplate: "Dato fascinante sobre un dinosaurio específico."},
}

// AssetCatalog is used by the clip and music variant
var AssetCatalog = []Topic{
	{Category: "Animales", PromptTemplate: "Dato curioso sobre un animal poco común para niños."},
	{Category: "Espacio", PromptTemplate: "Dato asombroso sobre planetas o estrellas."},
	{Category: "Dinosaurios", PromptTemplate: "Dato fascinante sobre un dinosaurio específico."},
}

// Selector draws topics uniformly from a catalog
type Selector struct {
	catalog []Topic
	rng     *rand.Rand
}

// NewSelector panics on an empty catalog since catalogs are fixed at build time
func NewSelector(catalog []Topic, rng *rand.Rand) *Selector {
	if len(catalog) == 0 {
		panic("topic: empty catalog")
	}
	return &Selector{catalog: catalog, rng: rng}
}

// Select returns one topic from the catalog
func (s *Selector) Select() Topic {
	t := s.catalog[s.rng.Intn(len(s.catalog))]
	utils.LogInfo("📚 Category: %s", t.Category)
	return t
}

// Contains reports whether t is an entry of catalog
func Contains(catalog []Topic, t Topic) bool {
	for _, c := range catalog {
		if c == t {
			return true
		}
	}
	return false
}
