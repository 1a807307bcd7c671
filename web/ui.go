package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/util"
	"github.com/gin-gonic/gin"
)

type IndexPageData struct {
	Title     string
	Host      string
	SSHPort   int
	Query     string
	Posts     []PostView
	Loading   bool
	Error     string
	StateJSON template.JS
	FeedURL   string
}

type PostView struct {
	ID        string
	Actor     string
	Permalink string
	Verb      string
	Title     string
	Message   string
	TimeAgo   string
	Timestamp string
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else if duration < 30*24*time.Hour {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	} else {
		return t.Format("Jan 2, 2006")
	}
}

func postViews(activities []domain.Activity, limit int) []PostView {
	ordered := domain.NewestFirst(activities)
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	posts := make([]PostView, 0, len(ordered))
	for _, a := range ordered {
		posts = append(posts, PostView{
			ID:        a.ID,
			Actor:     a.ActorName(),
			Permalink: a.Permalink,
			Verb:      a.Verb,
			Title:     a.Title,
			Message:   util.StripHTML(a.Content()),
			TimeAgo:   formatTimeAgo(a.Time),
			Timestamp: a.Time.UTC().Format(time.RFC3339),
		})
	}
	return posts
}

// HandleIndex renders the public timeline for the filter of the request. The
// state the page was rendered from is embedded so a client can pick up
// from it. Clients asking for JSON get the state itself.
func (s *Server) HandleIndex(c *gin.Context) {
	filter, err := domain.ParseFilter(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := store.New(store.WithLogger(s.logger))
	st.FetchTimeline(c.Request.Context(), s.fetcher, filter)
	state := st.State()

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, state)
		return
	}

	blob, err := st.MarshalState()
	if err != nil {
		s.logger.Error("Failed to encode state", "err", err)
		c.HTML(http.StatusInternalServerError, "index.html", IndexPageData{Title: "Error", Error: "Failed to render timeline"})
		return
	}

	data := IndexPageData{
		Title:     "Public timeline",
		Host:      s.conf.Conf.Host,
		SSHPort:   s.conf.Conf.SshPort,
		Query:     filter.Q,
		Posts:     postViews(state.PublicTimeline.Activities, s.conf.Conf.PageSize),
		Loading:   state.PublicTimeline.Loading,
		StateJSON: template.JS(blob),
		FeedURL:   "/api/feed?" + (domain.Filter{Q: filter.Q}).Values().Encode(),
	}
	if state.PublicTimeline.Err != nil {
		data.Error = state.PublicTimeline.Err.Error()
	}

	c.HTML(http.StatusOK, "index.html", data)
}
