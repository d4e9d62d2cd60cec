package search

import (
	"net/url"
	"strings"

	"verifact/pkg/common"
)

// majorNewsDomains are internationally established outlets that get the
// news_major weight in aggregate scoring.
var majorNewsDomains = []string{
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"bbc.co.uk",
	"cnn.com",
	"nytimes.com",
	"theguardian.com",
	"washingtonpost.com",
	"wsj.com",
	"bloomberg.com",
	"npr.org",
}

var socialDomains = []string{
	"twitter.com",
	"x.com",
	"facebook.com",
	"instagram.com",
	"tiktok.com",
	"reddit.com",
	"youtube.com",
}

var blogIndicators = []string{
	"blogspot.",
	"wordpress.",
	"medium.com",
	"substack.com",
	"tumblr.com",
	"blog.",
}

// ExtractDomain returns the lowercased host of a URL without a www prefix.
// Unparseable input yields an empty string.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// ClassifySourceType assigns an authority class to a source URL based on its
// domain. Lookup order matters: social and wiki domains are recognized before
// the official .gov/.edu check so community sites on those TLDs do not get an
// official weight.
func ClassifySourceType(rawURL string) string {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return common.SourceNewsGeneral
	}

	for _, d := range socialDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return common.SourceSocial
		}
	}

	if domain == "wikipedia.org" || strings.HasSuffix(domain, ".wikipedia.org") {
		return common.SourceWiki
	}

	if strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".edu") ||
		strings.Contains(domain, ".gov.") || strings.Contains(domain, ".edu.") {
		return common.SourceOfficial
	}

	for _, d := range majorNewsDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return common.SourceNewsMajor
		}
	}

	for _, indicator := range blogIndicators {
		if strings.Contains(domain, indicator) {
			return common.SourceBlog
		}
	}

	return common.SourceNewsGeneral
}
