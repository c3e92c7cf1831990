// The flatshare service exposes the users, flats, messages and token
// resources of the flatshare API over MySQL.
package main

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/restylabs/resty/app/v1/ctrl"
	"github.com/restylabs/resty/app/v1/model"
	"github.com/restylabs/resty/core/access"
	"github.com/restylabs/resty/core/config"
	"github.com/restylabs/resty/core/csql"
	"github.com/restylabs/resty/core/dal"
	"github.com/restylabs/resty/core/logger"
	"github.com/restylabs/resty/core/notify"
	"github.com/restylabs/resty/core/rest"
	"github.com/restylabs/resty/migrations"
)

func main() {
	godotenv.Load()
	logger.InitLogger(logrus.InfoLevel)

	service, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("cannot load configuration")
	}
	clients, err := service.Clients()
	if err != nil {
		logrus.WithError(err).Fatal("cannot load clients")
	}

	db, err := csql.Open(service.Database)
	if err != nil {
		logrus.WithError(err).Fatal("cannot open database")
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		logrus.WithError(err).Fatal("cannot migrate database")
	}

	var notifier notify.Notifier
	if service.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(service.AMQPURL)
		if err != nil {
			logrus.WithError(err).Fatal("cannot connect to broker")
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	users := dal.New(db, model.NewUser)
	flats := dal.New(db, model.NewFlat)
	messages := dal.New(db, model.NewMessage)
	if notifier != nil {
		users.WithNotifier(notifier)
		flats.WithNotifier(notifier)
		messages.WithNotifier(notifier)
	}

	tokens := access.NewTokenAuthority(service.TokenSecret, service.TokenExpiry)

	api := rest.NewRouter(service.Development())
	api.Register("v1", "users", &ctrl.Users{Users: users, Flats: flats, DB: db})
	api.Register("v1", "flats", &ctrl.Flats{Flats: flats})
	api.Register("v1", "messages", &ctrl.Messages{Messages: messages, Users: users, DB: db})
	api.Register("v1", "token", &ctrl.Token{DB: db, Tokens: tokens})

	router := mux.NewRouter()
	logger.AddRequestID(router)
	router.Use(access.NewMiddleware(&access.MiddlewareBuilder{
		Tokens:      tokens,
		Clients:     clients,
		Development: service.Development(),
	}))
	router.PathPrefix("/api").Handler(api)

	logrus.Infof("listen on port :%s", service.Port)
	logrus.Fatal(http.ListenAndServe(":"+service.Port, handlers.CompressHandler(router)))
}
