package web

import (
	"fmt"
	"time"

	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/util"
	"github.com/gorilla/feeds"
)

// GetRSS renders activities as an RSS feed, newest first
func GetRSS(conf *util.AppConfig, filter domain.Filter, activities []domain.Activity) (string, error) {
	link := fmt.Sprintf("http://%s:%d/", conf.Conf.Host, conf.Conf.HttpPort)
	title := "don public timeline"
	if filter.Q != "" {
		title = fmt.Sprintf("don public timeline - %s", filter.Q)
		link = fmt.Sprintf("%s?%s", link, filter.Values().Encode())
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "Public timeline of the federation",
		Created:     time.Now(),
	}

	ordered := domain.NewestFirst(activities)
	if len(ordered) > 0 {
		feed.Updated = ordered[0].Time
	}

	feedItems := make([]*feeds.Item, 0, len(ordered))
	for _, a := range ordered {
		feedItems = append(feedItems, &feeds.Item{
			Id:          a.ID,
			Title:       itemTitle(a),
			Link:        &feeds.Link{Href: a.Permalink},
			Description: util.Truncate(util.StripHTML(a.Content()), 280),
			Content:     a.Content(),
			Author:      &feeds.Author{Name: a.ActorName()},
			Created:     a.Time,
		})
	}

	feed.Items = feedItems
	return feed.ToRss()
}

func itemTitle(a domain.Activity) string {
	if a.Title != "" {
		return a.Title
	}
	if a.Object.Name != nil && *a.Object.Name != "" {
		return *a.Object.Name
	}
	return fmt.Sprintf("%s %s at %s", a.ActorName(), a.Verb, a.Time.Format(util.DateTimeFormat()))
}
