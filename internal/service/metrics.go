package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurum_messages_total",
			Help: "Messages appended, by target and kind",
		},
		[]string{"target", "kind"},
	)

	signInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aurum_sign_ins_total",
			Help: "Simulated magic-link sign-ins, by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	kindText   = "text"
	kindUpload = "upload"
)
