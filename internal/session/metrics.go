package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rpg_auth_attempts_total",
		Help: "Total number of authentication attempts by method and outcome.",
	},
	[]string{"method", "outcome"}, // method: email_register, email_login, wallet; outcome: success или ключ ошибки
)
