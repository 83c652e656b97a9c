// Package guard decides, per page load, whether the current page is the
// right one for the session's authentication and preference state.
package guard

import (
	"context"

	"github.com/nutriva/nutriva/internal/ports/outbound"
	"go.uber.org/zap"
)

// Page identifies one of the application's pages. Callers supply the page
// explicitly; the guard never inspects request paths.
type Page int

const (
	PageLogin Page = iota
	PagePreferences
	PageMain
)

// String returns the page name for logs.
func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PagePreferences:
		return "preferences"
	case PageMain:
		return "main"
	default:
		return "unknown"
	}
}

// LookupErrorPolicy names what the guard does when the preference lookup
// fails.
type LookupErrorPolicy int

const (
	// FailOpen keeps the user on the current page when the store errors,
	// trading strictness for availability.
	FailOpen LookupErrorPolicy = iota
	// FailClosed sends the user to the login page instead.
	FailClosed
)

// Decision is the guard's verdict for one page load.
type Decision struct {
	Redirect bool
	Target   Page
}

func stay() Decision {
	return Decision{}
}

func redirect(target Page) Decision {
	return Decision{Redirect: true, Target: target}
}

// Session is the snapshot of per-tab state the guard reads. The guard
// never mutates it.
type Session struct {
	UserEmail          string
	EditingPreferences bool
}

// Anonymous reports whether no identity is attached to the session.
func (s Session) Anonymous() bool {
	return s.UserEmail == ""
}

// Service evaluates the page-access rules. It only reads session and
// store state; the single side effect it asks for is a redirect.
type Service struct {
	prefs  outbound.PreferenceRepository
	policy LookupErrorPolicy
	logger *zap.Logger
}

// NewService creates a new access guard
func NewService(prefs outbound.PreferenceRepository, policy LookupErrorPolicy, logger *zap.Logger) *Service {
	return &Service{
		prefs:  prefs,
		policy: policy,
		logger: logger.Named("access-guard"),
	}
}

// Check computes the destination for a session loading page.
//
// Anonymous sessions may only see the login page. Authenticated sessions
// without a complete preference record are pushed from the main page to
// the preferences page. Sessions with complete preferences are pushed off
// the preferences page unless the editing override is set.
func (s *Service) Check(ctx context.Context, sess Session, page Page) Decision {
	if sess.Anonymous() {
		if page == PageLogin {
			return stay()
		}
		return redirect(PageLogin)
	}

	record, err := s.prefs.FindByEmail(ctx, sess.UserEmail)
	if err != nil {
		s.logger.Error("Preference lookup failed",
			zap.String("email", sess.UserEmail),
			zap.String("page", page.String()),
			zap.Error(err),
		)
		if s.policy == FailClosed {
			return redirect(PageLogin)
		}
		// Fail open: a transient store error never locks the user out of
		// the page they are already on.
		return stay()
	}

	complete := record.Complete()

	switch page {
	case PagePreferences:
		if complete && !sess.EditingPreferences {
			return redirect(PageMain)
		}
		return stay()
	case PageMain:
		if !complete {
			return redirect(PagePreferences)
		}
		return stay()
	default:
		// Logged-in users on the login page carry no constraint here;
		// the login page itself forwards existing sessions.
		return stay()
	}
}
