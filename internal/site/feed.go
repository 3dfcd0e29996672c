package site

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/model"
)

// Feed item caps: 20 newest sightings plus 20 newest posts, merged and
// trimmed to 30.
const (
	feedPerKind = 20
	feedTotal   = 30
)

const rssDateFormat = "Mon, 02 Jan 2006 15:04:05 +0000"

type feedItem struct {
	title       string
	link        string
	description string
	pubDate     string
	guid        string
	sortDate    string
}

// BuildFeed renders the RSS feed XML for the newest sightings and posts.
// Sightings must already be sorted newest first.
func BuildFeed(settings *conf.Settings, sightings []model.Sighting, posts []Post, now time.Time) string {
	siteURL := settings.Site.URL

	var items []feedItem
	for i := range sightings {
		if i >= feedPerKind {
			break
		}
		s := &sightings[i]
		imageURL := ""
		if img := s.FirstImage(); img != "" {
			imageURL = fmt.Sprintf("%s/images/web/%s", siteURL, img)
		}
		link := fmt.Sprintf("%s/sightings/%s.html", siteURL, s.ID)
		items = append(items, feedItem{
			title:       "Sighting: " + s.CommonName,
			link:        link,
			description: sightingDescription(s, imageURL),
			pubDate:     s.CapturedAt.UTC().Format(rssDateFormat),
			guid:        link,
			sortDate:    s.CapturedAt.UTC().Format(time.RFC3339),
		})
	}

	for i := range posts {
		if i >= feedPerKind {
			break
		}
		p := &posts[i]
		coverURL := ""
		if p.CoverImage != "" {
			coverURL = fmt.Sprintf("%s/images/web/%s", siteURL, p.CoverImage)
		}
		link := fmt.Sprintf("%s/posts/%s.html", siteURL, p.Slug)
		items = append(items, feedItem{
			title:       p.Title,
			link:        link,
			description: postDescription(p, coverURL),
			pubDate:     rssDate(p.Date, now),
			guid:        link,
			sortDate:    p.Date,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].sortDate > items[j].sortDate })
	if len(items) > feedTotal {
		items = items[:feedTotal]
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">` + "\n")
	b.WriteString("  <channel>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", EscapeXML(settings.Site.Title))
	fmt.Fprintf(&b, "    <link>%s</link>\n", siteURL)
	fmt.Fprintf(&b, "    <description>%s</description>\n", EscapeXML(settings.Site.Description))
	b.WriteString("    <language>en</language>\n")
	fmt.Fprintf(&b, "    <lastBuildDate>%s</lastBuildDate>\n", now.UTC().Format(rssDateFormat))
	fmt.Fprintf(&b, "    <atom:link href=\"%s/feed.xml\" rel=\"self\" type=\"application/rss+xml\"/>\n", siteURL)

	for _, item := range items {
		b.WriteString("    <item>\n")
		fmt.Fprintf(&b, "      <title>%s</title>\n", EscapeXML(item.title))
		fmt.Fprintf(&b, "      <link>%s</link>\n", item.link)
		fmt.Fprintf(&b, "      <description><![CDATA[%s]]></description>\n", item.description)
		fmt.Fprintf(&b, "      <pubDate>%s</pubDate>\n", item.pubDate)
		fmt.Fprintf(&b, "      <guid>%s</guid>\n", item.guid)
		b.WriteString("    </item>\n")
	}

	b.WriteString("  </channel>\n")
	b.WriteString("</rss>\n")
	return b.String()
}

func sightingDescription(s *model.Sighting, imageURL string) string {
	var b strings.Builder
	if imageURL != "" {
		fmt.Fprintf(&b, `<p><img src="%s" alt="%s" style="max-width:100%%;"></p>`, imageURL, EscapeXML(s.CommonName))
	}

	sciName := ""
	if s.ScientificName != "" {
		sciName = fmt.Sprintf(" (<em>%s</em>)", s.ScientificName)
	}
	fmt.Fprintf(&b, "<p><strong>%s</strong>%s</p>", EscapeXML(s.CommonName), sciName)
	fmt.Fprintf(&b, "<p>Category: %s | Season: %s</p>", titleWord(s.Category), titleWord(s.Season))

	if s.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>", EscapeXML(s.Notes))
	}
	if s.Weather != nil && s.Weather.TempMaxC != nil {
		fmt.Fprintf(&b, "<p>Weather: %.1f°C, %s</p>", *s.Weather.TempMaxC, s.Weather.Conditions)
	}
	return b.String()
}

func postDescription(p *Post, coverURL string) string {
	var b strings.Builder
	if coverURL != "" {
		fmt.Fprintf(&b, `<p><img src="%s" alt="%s" style="max-width:100%%;"></p>`, coverURL, EscapeXML(p.Title))
	}
	b.WriteString(string(p.Content))
	return b.String()
}

// rssDate formats a YYYY-MM-DD date for RSS, falling back to now when the
// date does not parse.
func rssDate(date string, now time.Time) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return now.UTC().Format(rssDateFormat)
	}
	return parsed.Format(rssDateFormat)
}

// EscapeXML escapes the five XML special characters.
func EscapeXML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(text)
}
