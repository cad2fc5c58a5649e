package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-backend/internal/config"
	"rental-backend/internal/models"
)

const (
	activeProductsKey = "products:active"
	activeProductsTTL = 5 * time.Minute
	authTTL           = 15 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: if Redis is
// unreachable every helper degrades to a miss.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// hashCredentials creates a hash of email+generation+password for the cache
// key. The generation counter lets InvalidateAuth orphan every cached entry
// for an email without knowing the password.
func hashCredentials(email, password string, generation int64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:%s", email, generation, password)
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

func authGeneration(ctx context.Context, email string) int64 {
	gen, err := client.Get(ctx, "auth:gen:"+email).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(email, password, authGeneration(ctx, email))
	userID, err := client.Get(ctx, key).Int()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials so repeat logins skip bcrypt
func CacheAuth(ctx context.Context, email, password string, userID int) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(email, password, authGeneration(ctx, email)), userID, authTTL)
}

// Enabled reports whether a Redis client is configured.
func Enabled() bool {
	return client != nil
}

// Ping probes the Redis connection for health reporting.
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// InvalidateAuth removes cached auth for an email (on password change,
// email change, or deactivation). Bumping the generation orphans the old
// keys; they expire on their own TTL.
func InvalidateAuth(ctx context.Context, email string) {
	if client == nil {
		return
	}
	client.Incr(ctx, "auth:gen:"+email)
}

// GetActiveProducts returns the cached active-product catalog, if present.
// The create-order screen polls this list constantly; serving it from Redis
// keeps the hot path off Postgres.
func GetActiveProducts(ctx context.Context) ([]*models.Product, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, activeProductsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetActiveProducts stores the active-product catalog.
func SetActiveProducts(ctx context.Context, products []*models.Product) {
	if client == nil {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	client.Set(ctx, activeProductsKey, data, activeProductsTTL)
}

// InvalidateActiveProducts drops the catalog cache after a product mutation.
func InvalidateActiveProducts(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, activeProductsKey)
}
