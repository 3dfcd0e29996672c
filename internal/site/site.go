// Package site builds the static site: HTML pages, the public sightings
// JSON, and the RSS feed.
package site

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/squaremeter/squarelog/internal/assets"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/errors"
	"github.com/squaremeter/squarelog/internal/logging"
	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/speciestree"
	"github.com/squaremeter/squarelog/internal/stats"
	"github.com/squaremeter/squarelog/internal/taxonomy"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	siteLogger   *slog.Logger
	siteLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	siteLogger, _, err = logging.NewFileLogger("logs/site.log", "site", siteLevelVar)
	if err != nil || siteLogger == nil {
		siteLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

var wordCaser = cases.Title(language.English)

func titleWord(s string) string {
	return wordCaser.String(s)
}

// Generator builds the static site from the collections.
type Generator struct {
	settings *conf.Settings
	store    *datastore.Store
	resolver *taxonomy.Resolver
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewGenerator creates a site generator. The resolver may be nil to build
// without refreshing taxonomy (the tree then uses the cache as-is).
func NewGenerator(settings *conf.Settings, store *datastore.Store, resolver *taxonomy.Resolver, clock clockwork.Clock) *Generator {
	if settings.Debug {
		siteLevelVar.Set(slog.LevelDebug)
	}
	return &Generator{
		settings: settings,
		store:    store,
		resolver: resolver,
		clock:    clock,
		logger:   siteLogger,
	}
}

// Report summarizes a completed build.
type Report struct {
	Sightings int
	Posts     int
	Species   int
	OutputDir string
}

type baseContext struct {
	Site      conf.SiteSettings
	Sightings []model.Sighting
	Posts     []Post
	Now       string
}

// Build generates the complete site into outputDir, replacing any previous
// build output.
func (g *Generator) Build(ctx context.Context, outputDir string) (*Report, error) {
	sightings, err := g.store.LoadSightings()
	if err != nil {
		return nil, err
	}
	observations, err := g.store.LoadObservations()
	if err != nil {
		return nil, err
	}
	posts, err := LoadPosts(g.settings.PostsDir)
	if err != nil {
		return nil, err
	}

	// Newest first throughout the site.
	sort.SliceStable(sightings, func(i, j int) bool {
		return sightings[i].CapturedAt.After(sightings[j].CapturedAt)
	})
	byID := make(map[string]*model.Sighting, len(sightings))
	for i := range sightings {
		byID[sightings[i].ID] = &sightings[i]
	}

	if err := g.prepareOutput(outputDir); err != nil {
		return nil, err
	}
	if err := g.copyStatic(outputDir); err != nil {
		return nil, err
	}
	if err := g.copyCatalog(outputDir); err != nil {
		return nil, err
	}

	templates, err := g.parseTemplates()
	if err != nil {
		return nil, err
	}

	base := baseContext{
		Site:      g.settings.Site,
		Sightings: sightings,
		Posts:     posts,
		Now:       g.clock.Now().Format(time.RFC3339),
	}

	if err := g.renderPages(templates, outputDir, base, byID); err != nil {
		return nil, err
	}
	if err := g.renderSightingPages(templates, outputDir, base); err != nil {
		return nil, err
	}
	if err := g.renderPostPages(templates, outputDir, base, byID); err != nil {
		return nil, err
	}
	if err := g.writePublicJSON(outputDir, sightings); err != nil {
		return nil, err
	}

	summary := stats.Compute(sightings, observations, g.settings, g.clock)
	if err := g.render(templates, filepath.Join(outputDir, "stats.html"), "stats.html", struct {
		baseContext
		Stats *stats.Summary
	}{base, summary}); err != nil {
		return nil, err
	}

	cache, err := g.taxonomyCache(ctx, sightings)
	if err != nil {
		return nil, err
	}
	tree := speciestree.Build(sightings, cache)
	treeStats := tree.Stats()
	if err := g.render(templates, filepath.Join(outputDir, "tree.html"), "tree.html", struct {
		baseContext
		Tree      *speciestree.Tree
		TreeStats speciestree.Stats
	}{base, tree, treeStats}); err != nil {
		return nil, err
	}

	feed := BuildFeed(g.settings, sightings, posts, g.clock.Now())
	if err := os.WriteFile(filepath.Join(outputDir, "feed.xml"), []byte(feed), 0o644); err != nil {
		return nil, g.fileError(err, filepath.Join(outputDir, "feed.xml"))
	}

	g.logger.Info("site built",
		"sightings", len(sightings),
		"posts", len(posts),
		"species", treeStats.Species,
		"output", outputDir)

	return &Report{
		Sightings: len(sightings),
		Posts:     len(posts),
		Species:   treeStats.Species,
		OutputDir: outputDir,
	}, nil
}

// taxonomyCache refreshes the taxonomy cache through the resolver when one is
// wired, otherwise it reads the cache as-is.
func (g *Generator) taxonomyCache(ctx context.Context, sightings []model.Sighting) (model.TaxonomyCache, error) {
	if g.resolver == nil {
		return g.store.LoadTaxonomyCache()
	}
	cache, fetched, err := g.resolver.ResolveAll(ctx, sightings)
	if err != nil {
		return nil, err
	}
	if fetched > 0 {
		g.logger.Info("taxonomy refreshed", "fetched", fetched)
	}
	return cache, nil
}

func (g *Generator) parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"date":      formatDate,
		"shortDate": formatShortDate,
		"title":     titleWord,
		"float": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
	}
	templates, err := template.New("site").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.New(err).
			Component("site").
			Category(errors.CategoryFileParsing).
			Build()
	}
	return templates, nil
}

// prepareOutput clears the output directory and recreates the page and asset
// subdirectories.
func (g *Generator) prepareOutput(outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil && !os.IsNotExist(err) {
		return g.fileError(err, outputDir)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
			return g.fileError(err, filepath.Join(outputDir, entry.Name()))
		}
	}

	dirs := []string{
		"posts", "sightings", "css", "data",
		"images", filepath.Join("images", "thumb"), filepath.Join("images", "web"), filepath.Join("images", "full"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(outputDir, dir), 0o755); err != nil {
			return g.fileError(err, filepath.Join(outputDir, dir))
		}
	}
	return nil
}

func (g *Generator) copyStatic(outputDir string) error {
	staticDir := g.settings.StaticDir

	if err := copyDirFiles(filepath.Join(staticDir, "css"), filepath.Join(outputDir, "css")); err != nil {
		return err
	}
	if err := copyDirFiles(filepath.Join(staticDir, "images"), filepath.Join(outputDir, "images")); err != nil {
		return err
	}
	// GitHub Pages custom domain marker and favicon travel along when present.
	for _, name := range []string{"CNAME", "favicon.ico"} {
		src := filepath.Join(staticDir, name)
		if _, err := os.Stat(src); err == nil {
			if err := copyFile(src, filepath.Join(outputDir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) copyCatalog(outputDir string) error {
	for _, size := range assets.Sizes {
		src := filepath.Join(g.settings.CatalogDir, size)
		dst := filepath.Join(outputDir, "images", size)
		if err := copyDirFiles(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) renderPages(templates *template.Template, outputDir string, base baseContext, byID map[string]*model.Sighting) error {
	var featured []model.Sighting
	for _, id := range g.settings.Site.FeaturedSightings {
		if s, ok := byID[id]; ok {
			featured = append(featured, *s)
		}
	}
	latest := base.Sightings
	if len(latest) > 6 {
		latest = latest[:6]
	}

	if err := g.render(templates, filepath.Join(outputDir, "index.html"), "index.html", struct {
		baseContext
		Featured []model.Sighting
		Latest   []model.Sighting
	}{base, featured, latest}); err != nil {
		return err
	}

	if err := g.render(templates, filepath.Join(outputDir, "about.html"), "about.html", base); err != nil {
		return err
	}
	if err := g.render(templates, filepath.Join(outputDir, "browse.html"), "browse.html", base); err != nil {
		return err
	}
	return g.render(templates, filepath.Join(outputDir, "posts", "index.html"), "posts_index.html", base)
}

func (g *Generator) renderSightingPages(templates *template.Template, outputDir string, base baseContext) error {
	for i := range base.Sightings {
		var prev, next *model.Sighting
		if i > 0 {
			prev = &base.Sightings[i-1]
		}
		if i < len(base.Sightings)-1 {
			next = &base.Sightings[i+1]
		}
		data := struct {
			baseContext
			Sighting *model.Sighting
			Prev     *model.Sighting
			Next     *model.Sighting
		}{base, &base.Sightings[i], prev, next}

		path := filepath.Join(outputDir, "sightings", base.Sightings[i].ID+".html")
		if err := g.render(templates, path, "sighting.html", data); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) renderPostPages(templates *template.Template, outputDir string, base baseContext, byID map[string]*model.Sighting) error {
	// Chronological post order determines each post's sighting date range.
	chronological := make([]Post, len(base.Posts))
	copy(chronological, base.Posts)
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].Date < chronological[j].Date
	})

	for i := range base.Posts {
		post := &base.Posts[i]
		data := struct {
			baseContext
			Post            *Post
			CoverImageURL   string
			LinkedSightings []model.Sighting
		}{base, post, coverImageURL(post.CoverImage), linkedSightings(post, chronological, base.Sightings, byID)}

		path := filepath.Join(outputDir, "posts", post.Slug+".html")
		if err := g.render(templates, path, "post.html", data); err != nil {
			return err
		}
	}
	return nil
}

// coverImageURL resolves a frontmatter cover image reference to a site URL.
// "static/images/..." references point into the copied static images; bare
// filenames are catalog web renditions.
func coverImageURL(coverImage string) string {
	if coverImage == "" {
		return ""
	}
	if strings.HasPrefix(coverImage, "static/images/") {
		return "/images/" + strings.TrimPrefix(coverImage, "static/images/")
	}
	return "/images/web/" + coverImage
}

// linkedSightings resolves the sightings shown under a post: the explicitly
// listed IDs when the frontmatter names any, otherwise every sighting dated
// after the previous post and up to this one, oldest first.
func linkedSightings(post *Post, chronological []Post, sightings []model.Sighting, byID map[string]*model.Sighting) []model.Sighting {
	if len(post.SightingIDs) > 0 {
		var linked []model.Sighting
		for _, id := range post.SightingIDs {
			if s, ok := byID[id]; ok {
				linked = append(linked, *s)
			}
		}
		return linked
	}

	prevDate := "1900-01-01"
	for i := range chronological {
		if chronological[i].Slug == post.Slug {
			if i > 0 {
				prevDate = chronological[i-1].Date
			}
			break
		}
	}

	var linked []model.Sighting
	for i := range sightings {
		date := sightings[i].Date()
		if date > prevDate && date <= post.Date {
			linked = append(linked, sightings[i])
		}
	}
	sort.SliceStable(linked, func(i, j int) bool {
		return linked[i].CapturedAt.Before(linked[j].CapturedAt)
	})
	return linked
}

// publicSighting is the trimmed projection exposed for client-side filtering
// on the browse page.
type publicSighting struct {
	ID             string `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	Category       string `json:"category"`
	Season         string `json:"season"`
	CapturedAt     string `json:"captured_at"`
	Image          string `json:"image"`
}

func (g *Generator) writePublicJSON(outputDir string, sightings []model.Sighting) error {
	public := make([]publicSighting, 0, len(sightings))
	for i := range sightings {
		s := &sightings[i]
		public = append(public, publicSighting{
			ID:             s.ID,
			CommonName:     s.CommonName,
			ScientificName: s.ScientificName,
			Category:       s.Category,
			Season:         s.Season,
			CapturedAt:     s.CapturedAt.Format(time.RFC3339),
			Image:          s.FirstImage(),
		})
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(public); err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Build()
	}
	path := filepath.Join(outputDir, "data", "sightings.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return g.fileError(err, path)
	}
	return nil
}

func (g *Generator) render(templates *template.Template, path, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryGeneric).
			Context("template", name).
			Build()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return g.fileError(err, path)
	}
	return nil
}

func (g *Generator) fileError(err error, path string) error {
	return errors.New(err).
		Component("site").
		Category(errors.CategoryFileIO).
		Context("file", path).
		Build()
}

func copyDirFiles(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("dir", srcDir).
			Build()
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("dir", dstDir).
			Build()
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(srcDir, entry.Name()), filepath.Join(dstDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("file", src).
			Build()
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("file", dst).
			Build()
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.New(err).
			Component("site").
			Category(errors.CategoryFileIO).
			Context("file", dst).
			Build()
	}
	return nil
}

// formatDate renders an RFC 3339 timestamp or YYYY-MM-DD date as a long date.
func formatDate(value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format("January 02, 2006")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Format("January 02, 2006")
	}
	if len(value) >= 10 {
		return value[:10]
	}
	return value
}

// formatShortDate renders a timestamp as "Jan 02".
func formatShortDate(value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format("Jan 02")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Format("Jan 02")
	}
	if len(value) >= 10 {
		return value[:10]
	}
	return value
}
