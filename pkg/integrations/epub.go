package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/recipes/pkg/data"
)

const cookbookCSS = `body { font-family: serif; }
h1 { margin-bottom: 0.2em; }
.meta { color: #666; font-style: italic; }
.thumb { width: 100%; height: auto; }
ul.ingredients li { margin: 0.2em 0; }
.measure { color: #555; }
`

// CookbookEntry is one recipe plus the local path of its thumbnail, if any.
type CookbookEntry struct {
	Recipe    data.Recipe
	ImagePath string
}

type CookbookBuilder struct {
	outputDir string
}

func NewCookbookBuilder(outputDir string) *CookbookBuilder {
	if outputDir == "" {
		outputDir, _ = os.MkdirTemp("", "recipes-epub-*")
	}
	return &CookbookBuilder{outputDir: outputDir}
}

func (b *CookbookBuilder) OutputDir() string {
	return b.outputDir
}

// CreateCookbook writes an EPUB with one section per entry and returns its path.
func (b *CookbookBuilder) CreateCookbook(title string, entries []CookbookEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no recipes to compile")
	}
	if title == "" {
		title = "My Favorite Recipes"
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("TheMealDB")
	e.SetDescription(fmt.Sprintf("%d favorite recipes", len(entries)))
	e.SetLang("en")

	cssPath, cleanup, err := writeTempCSS()
	if err != nil {
		return "", err
	}
	defer cleanup()
	internalCSS, err := e.AddCSS(cssPath, "cookbook.css")
	if err != nil {
		return "", fmt.Errorf("failed to add stylesheet: %w", err)
	}

	for i, entry := range entries {
		if err := b.addRecipe(e, entry, internalCSS, i+1); err != nil {
			return "", fmt.Errorf("failed to add recipe %s: %w", entry.Recipe.ID, err)
		}
	}

	outputPath := filepath.Join(b.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

func (b *CookbookBuilder) addRecipe(e *epub.Epub, entry CookbookEntry, cssPath string, n int) error {
	r := entry.Recipe

	var body strings.Builder
	fmt.Fprintf(&body, "<h1>%s</h1>\n", html.EscapeString(r.Name))

	var meta []string
	for _, s := range []string{r.Category, r.Origin} {
		if s != "" {
			meta = append(meta, html.EscapeString(s))
		}
	}
	if len(meta) > 0 {
		fmt.Fprintf(&body, "<p class=\"meta\">%s</p>\n", strings.Join(meta, " &#183; "))
	}

	if entry.ImagePath != "" {
		internal, err := e.AddImage(entry.ImagePath, fmt.Sprintf("recipe-%03d%s", n, filepath.Ext(entry.ImagePath)))
		if err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}
		fmt.Fprintf(&body, "<img class=\"thumb\" src=\"%s\" alt=\"%s\"/>\n", internal, html.EscapeString(r.Name))
	}

	if len(r.Ingredients) > 0 {
		body.WriteString("<h2>Ingredients</h2>\n<ul class=\"ingredients\">\n")
		for _, ing := range r.Ingredients {
			if ing.Measure != "" {
				fmt.Fprintf(&body, "<li><strong>%s</strong> <span class=\"measure\">%s</span></li>\n",
					html.EscapeString(ing.Item), html.EscapeString(ing.Measure))
			} else {
				fmt.Fprintf(&body, "<li><strong>%s</strong></li>\n", html.EscapeString(ing.Item))
			}
		}
		body.WriteString("</ul>\n")
	}

	if instructions := strings.TrimSpace(r.Instructions); instructions != "" {
		body.WriteString("<h2>Instructions</h2>\n")
		for _, para := range strings.Split(instructions, "\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			fmt.Fprintf(&body, "<p>%s</p>\n", html.EscapeString(para))
		}
	}

	_, err := e.AddSection(body.String(), r.Name, fmt.Sprintf("recipe-%03d.xhtml", n), cssPath)
	if err != nil {
		return fmt.Errorf("failed to add section: %w", err)
	}
	return nil
}

func writeTempCSS() (string, func(), error) {
	f, err := os.CreateTemp("", "cookbook-*.css")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create stylesheet: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(cookbookCSS); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write stylesheet: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		result = "cookbook"
	}
	return result
}
