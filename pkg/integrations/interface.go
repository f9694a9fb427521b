package integrations

import "io"

type ImageOptimizer interface {
	ProcessImage(input io.Reader) ([]byte, error)
}

type Cookbook interface {
	CreateCookbook(title string, entries []CookbookEntry) (string, error)
}
