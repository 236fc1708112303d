package middleware

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
)

var forbiddenAdmin = fmt.Errorf("%w: admin role required", domain.ErrForbidden)

func wrapUnauthorized(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
}
