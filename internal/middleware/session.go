package middleware

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionName = "cantinho_session"

	cartIDKey       = "cartId"
	customerNameKey = "customerName"
	pendingOrderKey = "pendingOrderId"
)

// Sessions installs the signed cookie session that identifies a cart.
func Sessions(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store)
}

// CartSession makes sure the session holds a cart id and exposes it to the
// handlers through CartID.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, _ := session.Get(cartIDKey).(string)
		if id == "" {
			id = uuid.NewString()
			session.Set(cartIDKey, id)
			if err := session.Save(); err != nil {
				log.Printf("[SESSION] [ERROR] could not save new cart session: %v", err)
			}
		}

		c.Set(cartIDKey, id)
		c.Next()
	}
}

func CartID(c *gin.Context) string {
	return c.GetString(cartIDKey)
}

// RememberPendingOrder records the order this session submitted and has not
// paid yet.
func RememberPendingOrder(c *gin.Context, orderID string) error {
	session := sessions.Default(c)
	session.Set(pendingOrderKey, orderID)
	return session.Save()
}

func PendingOrder(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(pendingOrderKey).(string)
	return id
}

// CompleteCheckout forgets the pending order and remembers name as the
// session's customer.
func CompleteCheckout(c *gin.Context, name string) error {
	session := sessions.Default(c)
	session.Delete(pendingOrderKey)
	session.Set(customerNameKey, name)
	return session.Save()
}

func RememberedCustomer(c *gin.Context) string {
	name, _ := sessions.Default(c).Get(customerNameKey).(string)
	return name
}

// EndSession forgets the cart id and the remembered customer.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
