package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

const (
	msgMissingToken = "отсутствует или некорректный заголовок Authorization"
	msgInvalidToken = "недействительный токен"
	msgForbidden    = "недостаточно прав"
)

var (
	// ErrInvalidClaims возвращается, когда в токене нет обязательных полей
	ErrInvalidClaims = errors.New("middleware: invalid token claims")
)

type principalKey struct{}

// Claims поля bearer-токена
type Claims struct {
	Role         string `json:"role"`
	Organisation string `json:"org"`
	jwt.RegisteredClaims
}

// Principal переводит claims в аутентифицированного пользователя. sub - ID пользователя.
func (c *Claims) Principal() (domain.Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, fmt.Errorf("%w: sub must be a positive integer", ErrInvalidClaims)
	}

	role := domain.Role(strings.ToUpper(c.Role))
	switch role {
	case domain.RoleStudent, domain.RoleTeacher, domain.RoleAdmin:
	default:
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidClaims, c.Role)
	}

	return domain.Principal{UserID: id, Role: role, Organisation: c.Organisation}, nil
}

// Auth проверяет bearer-токен (HS256) и кладет пользователя в контекст запроса
func Auth(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}
			raw := strings.TrimSpace(header[len("Bearer "):])

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			principal, err := claims.Principal()
			if err != nil {
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole пропускает только указанные роли. Администратор проходит всегда.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}
			if _, ok := allowed[principal.Role]; !ok && !principal.IsAdmin() {
				handlers.RespondForbidden(w, handlers.ReasonForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal кладет пользователя в контекст
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal достает пользователя из контекста
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// GetUserID достает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	p, ok := GetPrincipal(ctx)
	return p.UserID, ok
}
