package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/basicauth"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/StoryBB/permissions/internal/db/controller/member"
	"github.com/StoryBB/permissions/internal/db/models"
	"github.com/StoryBB/permissions/internal/permission"
)

const (
	localsSubject = "subject"
	realm         = `Basic realm="StoryBB permissions"`

	// ErrMsgUnauthorized is sent when credentials are missing or wrong.
	ErrMsgUnauthorized = "Unauthorized"
	// ErrMsgTooManyRequests is sent while a client is throttled.
	ErrMsgTooManyRequests = "Too many failed logins"
	// ErrMsgForbidden is sent when the member lacks the route permission.
	ErrMsgForbidden = "Forbidden: you don't have permission to access this resource"
	// ErrMsgInternal is sent when the permission check failed.
	ErrMsgInternal = "Internal Server Error"
)

// Authenticator checks member credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, name, password string) (*models.Member, error)
}

// pruneAt is the number of tracked clients above which idle limiters are dropped.
const pruneAt = 1024

// Throttle limits failed logins per client ip.
type Throttle struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	pruneAt  int
	limiters map[string]*rate.Limiter
}

// NewThrottle allows perMinute failed logins per ip with the given burst.
// A zero rate disables throttling.
func NewThrottle(perMinute float64, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}

	return &Throttle{
		limit:    rate.Limit(perMinute / 60), //nolint:mnd
		burst:    burst,
		pruneAt:  pruneAt,
		limiters: make(map[string]*rate.Limiter),
	}
}

// prune drops limiters that have refilled completely. Callers hold mu.
func (t *Throttle) prune() {
	for ip, l := range t.limiters {
		if l.Tokens() >= float64(t.burst) {
			delete(t.limiters, ip)
		}
	}
}

// Blocked reports whether ip used up its failed logins.
func (t *Throttle) Blocked(ip string) bool {
	if t == nil || t.limit == 0 {
		return false
	}

	t.mu.Lock()
	l, ok := t.limiters[ip]
	t.mu.Unlock()

	return ok && l.Tokens() < 1
}

// Fail records a failed login of ip.
func (t *Throttle) Fail(ip string) {
	if t == nil || t.limit == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[ip]
	if !ok {
		if len(t.limiters) >= t.pruneAt {
			t.prune()
		}

		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[ip] = l
	}

	l.Allow()
}

func unauthorized(c fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, realm)

	return c.Status(fiber.StatusUnauthorized).SendString(ErrMsgUnauthorized)
}

// BasicAuth authenticates the request and stores the member as permission subject.
// Clients with too many failed logins are turned away before their credentials are checked.
func BasicAuth(members Authenticator, throttle *Throttle) fiber.Handler {
	check := basicauth.New(basicauth.Config{
		Authorizer: func(name, password string, c fiber.Ctx) bool {
			m, err := members.Authenticate(c.Context(), name, password)
			if err != nil {
				throttle.Fail(c.IP())

				if !errors.Is(err, member.ErrMemberNotFound) && !errors.Is(err, member.ErrInvalidPassword) &&
					!errors.Is(err, member.ErrMemberDisabled) {
					log.Error().Err(err).Str("member", name).Msg("failed to authenticate member")
				}

				return false
			}

			c.Locals(localsSubject, permission.SubjectFor(m))

			return true
		},
		Unauthorized: unauthorized,
	})

	return func(c fiber.Ctx) error {
		if ip := c.IP(); throttle.Blocked(ip) {
			log.Warn().Str("ip", ip).Msg("login throttled")

			return c.Status(fiber.StatusTooManyRequests).SendString(ErrMsgTooManyRequests)
		}

		return check(c)
	}
}

// SubjectFrom returns the authenticated member of the request.
func SubjectFrom(c fiber.Ctx) (permission.Subject, bool) {
	s, ok := c.Locals(localsSubject).(permission.Subject)

	return s, ok
}

// RequirePermission lets the request pass when the authenticated member holds permission
// forum-wide.
func RequirePermission(evaluator *permission.Evaluator, perm string) fiber.Handler {
	return func(c fiber.Ctx) error {
		subject, ok := SubjectFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString(ErrMsgUnauthorized)
		}

		allowed, err := evaluator.Allowed(c.Context(), subject, perm, nil)
		if err != nil {
			log.Error().Err(err).Uint64("member_id", subject.MemberID).Str("permission", perm).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString(ErrMsgInternal)
		}

		if !allowed {
			log.Warn().Uint64("member_id", subject.MemberID).Str("permission", perm).
				Msg("member lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString(ErrMsgForbidden)
		}

		return c.Next()
	}
}
