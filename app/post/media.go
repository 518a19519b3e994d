package post

import (
	"cmp"
	"regexp"
	"slices"
)

var variantTag = regexp.MustCompile(`\?tag=\w*`)

// highestBitrateURL picks the mp4 variant with the highest bitrate, keeping
// the first one on ties, and strips its "?tag=" suffix.
func highestBitrateURL(variants []rawVariant) (string, bool) {
	mp4 := make([]rawVariant, 0, len(variants))
	for _, v := range variants {
		if v.ContentType == "video/mp4" {
			mp4 = append(mp4, v)
		}
	}
	if len(mp4) == 0 {
		return "", false
	}

	slices.SortStableFunc(mp4, func(a, b rawVariant) int {
		return cmp.Compare(b.Bitrate, a.Bitrate)
	})

	u := mp4[0].URL
	if loc := variantTag.FindStringIndex(u); loc != nil {
		u = u[:loc[0]] + u[loc[1]:]
	}
	return u, true
}

func videoEntry(m *rawMedia) (string, bool) {
	u, ok := highestBitrateURL(m.variants())
	if !ok {
		return "", false
	}
	if m.MediaURLHTTPS != "" {
		u += " " + m.MediaURLHTTPS
	}
	return u, true
}

func isVideoKind(kind string) bool {
	return kind == string(MediaVideo) || kind == string(MediaGIF)
}

type mediaSet struct {
	media     []Media
	videoURLs []string
	link      *Link
}

// collectMedia classifies media entities. Videos and GIFs only ever reach
// videoURLs and photos only ever reach media.
func collectMedia(entities []rawMedia) mediaSet {
	var set mediaSet
	for i := range entities {
		m := &entities[i]
		switch {
		case isVideoKind(m.Type):
			u, ok := videoEntry(m)
			if !ok {
				continue
			}
			set.videoURLs = append(set.videoURLs, u)
			if link := callToAction(m); link != nil {
				set.link = link
			}
		case m.Type == string(MediaPhoto) && m.MediaURLHTTPS != "":
			set.media = append(set.media, Media{Kind: MediaPhoto, URL: m.MediaURLHTTPS, AltText: m.ExtAltText})
		}
	}
	return set
}

// callToAction prefers "watch now" over "visit site".
func callToAction(m *rawMedia) *Link {
	info := m.AdditionalMediaInfo
	if info == nil || info.CallToActions == nil {
		return nil
	}

	var target string
	switch cta := info.CallToActions; {
	case cta.WatchNow != nil && cta.WatchNow.URL != "":
		target = cta.WatchNow.URL
	case cta.VisitSite != nil && cta.VisitSite.URL != "":
		target = cta.VisitSite.URL
	default:
		return nil
	}

	title := info.Title
	switch {
	case info.Title != "" && info.Description != "":
		title = info.Title + " (" + info.Description + ")"
	case info.Title == "":
		title = target
	}
	return &Link{URL: target, Title: title}
}
