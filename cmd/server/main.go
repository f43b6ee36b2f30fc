// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/auth"
	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/handlers"
	"github.com/chinazes/secretsanta/internal/identity"
	"github.com/chinazes/secretsanta/internal/logbook"
	"github.com/chinazes/secretsanta/internal/middleware"
	"github.com/chinazes/secretsanta/internal/oauth"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := logbook.ConnectRedis(); err != nil {
		// the API stays up without the log queue; actions just go unlogged
		logger.Warnf("log queue unavailable: %v", err)
	}

	providers := oauth.NewRegistryFromEnv()
	resolver := identity.NewResolver(database.UserStore{}, logger)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.HandleFunc("/user/register", handlers.RegisterHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/me", handlers.MeHandler)

	// oauth endpoints
	mux.Handle("/auth/oauth/", logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/login"):
			handlers.OAuthLoginHandler(providers)(w, r)
		case strings.HasSuffix(r.URL.Path, "/callback"):
			handlers.OAuthCallbackHandler(providers, resolver, logger)(w, r)
		default:
			http.NotFound(w, r)
		}
	})))

	// game endpoints
	mux.Handle("/game/create", logged(http.HandlerFunc(handlers.CreateGameHandler)))
	mux.Handle("/game/get/", logged(http.HandlerFunc(handlers.GetGameHandler)))
	mux.Handle("/game/list", logged(http.HandlerFunc(handlers.ListGamesHandler)))
	mux.Handle("/game/join", logged(http.HandlerFunc(handlers.JoinGameHandler)))
	mux.Handle("/game/start", logged(http.HandlerFunc(handlers.StartGameHandler)))
	mux.Handle("/game/end", logged(http.HandlerFunc(handlers.EndGameHandler)))
	mux.Handle("/game/players/", logged(http.HandlerFunc(handlers.ListPlayersHandler)))
	mux.Handle("/game/pair/", logged(http.HandlerFunc(handlers.MyPairHandler)))
	mux.Handle("/game/gifted", logged(http.HandlerFunc(handlers.MarkGiftedHandler)))

	// wishlist endpoints
	mux.Handle("/wishlist/add", logged(http.HandlerFunc(handlers.AddWishlistItemHandler)))
	mux.Handle("/wishlist/list", logged(http.HandlerFunc(handlers.ListWishlistHandler)))
	mux.Handle("/wishlist/receiver/", logged(http.HandlerFunc(handlers.ReceiverWishlistHandler)))
	mux.Handle("/wishlist/remove", logged(http.HandlerFunc(handlers.RemoveWishlistItemHandler)))

	// ticket endpoints
	mux.Handle("/ticket/create", logged(http.HandlerFunc(handlers.CreateTicketHandler)))
	mux.Handle("/ticket/list", logged(http.HandlerFunc(handlers.ListTicketsHandler)))
	mux.Handle("/ticket/status", logged(http.HandlerFunc(handlers.UpdateTicketStatusHandler)))
	mux.Handle("/ticket/archive", logged(http.HandlerFunc(handlers.ArchiveTicketHandler)))

	// chat endpoints
	chatServer := handlers.NewChatServer()
	mux.Handle("/chat/send", logged(http.HandlerFunc(handlers.SendMessageHandler(chatServer))))
	mux.Handle("/chat/list/", logged(http.HandlerFunc(handlers.ListMessagesHandler)))
	mux.Handle("/chat/dm", logged(http.HandlerFunc(handlers.SendDirectMessageHandler)))
	mux.Handle("/chat/dm/", logged(http.HandlerFunc(handlers.ListDirectMessagesHandler)))
	mux.Handle("/chat/ws/", logged(http.HandlerFunc(handlers.ChatWSHandler(logger, chatServer))))

	// notification endpoints
	mux.Handle("/notifications/list", logged(http.HandlerFunc(handlers.ListNotificationsHandler)))
	mux.Handle("/notifications/read", logged(http.HandlerFunc(handlers.MarkNotificationReadHandler)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
