package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bbanting/canvasgradecheck/pkg/httputil"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

var (
	// ErrLoginFormNotFound means the LDAP login page had no authenticity token
	ErrLoginFormNotFound = errors.New("canvas: login form not found")
	// ErrLoginFailed means Canvas served the login form again after posting credentials
	ErrLoginFailed = errors.New("canvas: login failed")
)

var courseHrefRe = regexp.MustCompile(`/courses/(\d+)`)

// Session is a cookie-authenticated web session, used where the REST API
// lacks permission (account course listings).
type Session struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	loginURL   string
	baseURL    string
}

// AccountCourse is a course link scraped from an account page
type AccountCourse struct {
	ID   int
	Name string
}

// NewSession creates a session client with its own cookie jar
func NewSession(httpClient *httputil.Client, loginURL, baseURL string, log *logger.Logger) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Session{
		httpClient: httpClient.WithCookieJar(jar),
		logger:     log.WithField("module", "canvas_session"),
		loginURL:   strings.TrimRight(loginURL, "/") + "/login/ldap",
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Login posts LDAP credentials together with the page's authenticity token
func (s *Session) Login(ctx context.Context, username, password string) error {
	doc, err := s.fetchDocument(ctx, s.loginURL)
	if err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	token, ok := doc.Find(`[name="authenticity_token"]`).First().Attr("value")
	if !ok || token == "" {
		return ErrLoginFormNotFound
	}

	form := url.Values{}
	form.Set("pseudonym_session[unique_id]", username)
	form.Set("pseudonym_session[password]", password)
	form.Set("authenticity_token", token)

	resp, err := s.httpClient.PostForm(ctx, s.loginURL, form, httputil.WithRequestHeader("Referer", s.loginURL))
	if err != nil {
		return fmt.Errorf("post login form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrLoginFailed
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newStatusError(resp.StatusCode, body)
	}

	after, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse login response: %w", err)
	}
	if after.Find(`input[name="pseudonym_session[password]"]`).Length() > 0 {
		return ErrLoginFailed
	}

	s.logger.WithField("user", username).Info("Canvas session established")
	return nil
}

// AccountCourses scrapes course links from /accounts/:account.
// Order follows the page; repeated links keep their first occurrence.
func (s *Session) AccountCourses(ctx context.Context, account string) ([]AccountCourse, error) {
	doc, err := s.fetchDocument(ctx, fmt.Sprintf("%s/accounts/%s", s.baseURL, url.PathEscape(account)))
	if err != nil {
		return nil, fmt.Errorf("load account page: %w", err)
	}

	return parseAccountCourses(doc), nil
}

func parseAccountCourses(doc *goquery.Document) []AccountCourse {
	seen := make(map[int]struct{})
	var courses []AccountCourse

	doc.Find(`a[href*="/courses/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := courseHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}

		id, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		courses = append(courses, AccountCourse{
			ID:   id,
			Name: strings.Join(strings.Fields(a.Text()), " "),
		})
	})

	return courses
}

func (s *Session) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.httpClient.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newStatusError(resp.StatusCode, body)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}
