package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/tui/common"
)

// View renders the feed as a string.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())

	if m.open {
		b.WriteString(m.commentsView())
		b.WriteString(m.statusBarView("enter post · ctrl+p/ctrl+n select · ctrl+x delete · esc close"))
		return b.String()
	}

	if m.searchInput {
		b.WriteString("\n  Search: " + m.searchState.input.View() + "\n")
	}

	posts := m.visiblePosts()
	switch {
	case m.loading && len(posts) == 0:
		b.WriteString(fmt.Sprintf("\n  %s Loading posts...\n", m.spinner.View()))
	case m.err != nil:
		b.WriteString("\n" + common.ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n")
	case len(posts) == 0 && m.searchResults:
		b.WriteString(fmt.Sprintf("\n  No posts match %q. esc to go back.\n", m.query))
	case len(posts) == 0:
		b.WriteString("\n  No posts yet. Press p to write the first one.\n")
	default:
		b.WriteString(m.listView(posts))
	}

	hints := "↑/↓ move · l like · L like all · c comments · p post · / search · m mine · u profile · t tech · q quit"
	b.WriteString(m.statusBarView(hints))
	return b.String()
}

func (m Model) headerView() string {
	title := common.AppTitleStyle.Padding(1, 0, 0, 1).Render("⚡ Pulse")
	tagline := common.TaglineStyle.Render("<the feed that follows you home>")

	scope := "all posts"
	if m.scopeMine {
		scope = "my posts"
	}
	if m.searchResults {
		scope = fmt.Sprintf("search: %q (%d)", m.query, len(m.results))
	}
	scopeLine := common.HintStyle.MarginLeft(2).Render(scope)

	return title + tagline + "\n" + scopeLine + "\n"
}

func (m Model) listView(posts []domain.Post) string {
	rows := m.visibleRows()
	start := m.startIndex
	if start < 0 {
		start = 0
	}
	if start >= len(posts) {
		start = len(posts) - 1
	}
	end := start + rows
	if end > len(posts) {
		end = len(posts)
	}

	uid := m.currentUID()
	now := time.Now()
	width := m.width - 8
	if width < 20 {
		width = 60
	}

	var list strings.Builder
	for i := start; i < end; i++ {
		list.WriteString(m.postItemView(posts[i], i == m.cursor, uid, now, width))
		list.WriteString("\n")
	}
	return list.String()
}

func (m Model) postItemView(post domain.Post, selected bool, uid string, now time.Time, width int) string {
	author := common.AuthorStyle.Render(common.AvatarGlyph(post.UserAvatar) + " " + post.UserName)
	if post.IsOwn(uid) {
		author += common.OwnBadgeStyle.Render("(you)")
	}
	timestamp := common.TimestampStyle.Render(common.RelativeTime(post.CreatedAt, now))

	likeIcon := "♡"
	likeStyle := common.CounterStyle
	if post.LikedBy(uid) {
		likeIcon = "♥"
		likeStyle = common.LikedStyle
	}
	meta := fmt.Sprintf("%s %d  🗨 %d",
		likeStyle.Render(likeIcon), post.LikesCount, post.CommentsCount)

	body := common.ContentStyle.Render(common.Clip(post.Text, width))

	item := fmt.Sprintf("%s  %s\n%s\n%s", author, timestamp, body, meta)
	if selected {
		item = common.SelectedStyle.Width(width + 2).Render(item)
		if m.confirmDelete {
			item += "\n" + common.ConfirmStyle.Render("Delete this post? (y/n)")
		}
	} else {
		item = common.UnselectedStyle.Width(width + 2).Render(item)
	}
	return item
}

func (m Model) commentsView() string {
	var b strings.Builder

	post, ok := m.selectedPost()
	if ok {
		header := common.AuthorStyle.Render(post.UserName) + " " +
			common.ContentStyle.Render(common.Clip(post.Text, 60))
		b.WriteString("\n  " + header + "\n\n")
	}

	if len(m.comments) == 0 {
		b.WriteString("  No comments yet.\n")
	}
	now := time.Now()
	for i, c := range m.comments {
		marker := "  "
		if i == m.selected {
			marker = common.LikedStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%s %s  %s",
			marker,
			common.AuthorStyle.Render(c.UserName),
			common.TimestampStyle.Render(common.RelativeTime(c.CreatedAt, now)),
			common.ContentStyle.Render(common.Clip(c.Text, 60)))
		b.WriteString(line + "\n")
	}

	b.WriteString("\n  " + m.commentState.input.View() + "\n")
	return b.String()
}

func (m Model) statusBarView(hints string) string {
	var parts []string
	if m.running {
		parts = append(parts, fmt.Sprintf("%s Liking %d/%d (ok %d)",
			m.spinner.View(), m.progress.Done, m.progress.Total,
			m.progress.Succeeded))
	}
	if m.status != "" {
		style := common.SuccessStyle
		if strings.Contains(m.status, "failed") || strings.Contains(m.status, "cannot") ||
			strings.Contains(m.status, "Only") || strings.Contains(m.status, "stopped") {
			style = common.ErrorStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	parts = append(parts, common.HintStyle.Render(hints))
	return common.StatusBarStyle.Render(strings.Join(parts, lipgloss.NewStyle().Render("  ")))
}
