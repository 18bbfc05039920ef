package middleware

import (
	"sync"
	"time"

	"ecobites-be/internal/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func init() {
	go cleanupVisitors()
}

func getVisitor(key string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(limitGeneral, burstGeneral)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes stale entries to prevent memory leaks.
func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// RateLimit buckets by authenticated user when possible, IP otherwise.
func RateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var identity string
		if userID, ok := utils.GetUserIDFromContext(c.UserContext()); ok {
			identity = "user:" + userID
		} else {
			identity = "ip:" + c.IP()
		}

		if !getVisitor(identity).Allow() {
			return c.Status(fiber.StatusTooManyRequests).
				JSON(fiber.Map{"error": "Too many requests"})
		}

		return c.Next()
	}
}
