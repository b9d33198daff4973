package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	auditfan "github.com/sheikh-saqib/account-balance-ledger/internal/audit"
	auditkafka "github.com/sheikh-saqib/account-balance-ledger/internal/audit/kafka"
	auditmemory "github.com/sheikh-saqib/account-balance-ledger/internal/audit/memory"
	auditpostgres "github.com/sheikh-saqib/account-balance-ledger/internal/audit/postgres"
	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/ledger"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
	storagememory "github.com/sheikh-saqib/account-balance-ledger/internal/storage/memory"
	storagepostgres "github.com/sheikh-saqib/account-balance-ledger/internal/storage/postgres"
)

type Config struct {
	Addr          string   `yaml:"addr"`
	LockTimeoutMS int      `yaml:"lock_timeout_ms"`
	PostgresDSN   string   `yaml:"postgres_dsn"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`
}

func loadConfig() Config {
	var cfg Config

	// config.yaml is optional; env vars win over it either way.
	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Failed to parse config.yaml: %v", err)
		}
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if topic := os.Getenv("KAFKA_TOPIC"); topic != "" {
		cfg.KafkaTopic = topic
	}

	// Fill in defaults for anything still unset.
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LockTimeoutMS == 0 {
		cfg.LockTimeoutMS = 5000
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "mutation_records"
	}
	return cfg
}

// statusFor maps engine error kinds to transport status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, models.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := loadConfig()

	var store interfaces.AccountStore
	auditMemory := auditmemory.NewLog()
	sinks := auditfan.Multi{auditMemory}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to open postgres: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping postgres: %v", err)
		}
		store = storagepostgres.NewAccountStore(db)
		sinks = append(sinks, auditpostgres.NewLog(db))
		log.Println("Using postgres account store")
	} else {
		store = storagememory.NewAccountStore()
		log.Println("Using in-memory account store")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaLog := auditkafka.NewLog(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaLog.Close()
		sinks = append(sinks, kafkaLog)
		log.Printf("Streaming audit records to kafka topic %q", cfg.KafkaTopic)
	}

	engine := ledger.NewEngine(store, sinks, time.Duration(cfg.LockTimeoutMS)*time.Millisecond)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			OpeningBalance decimal.Decimal `json:"opening_balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		account, err := engine.CreateAccount(r.Context(), req.OpeningBalance)
		if errors.Is(err, models.ErrLog) {
			// Balance is durable, only the audit append failed.
			log.Printf("audit gap on account creation %s: %v", account.Key, err)
		} else if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		writeJSON(w, http.StatusCreated, account)
	})

	http.HandleFunc("/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			http.Error(w, "account_id is a mandatory field", http.StatusBadRequest)
			return
		}

		balance, err := engine.Balance(r.Context(), accountID)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		writeJSON(w, http.StatusOK, struct {
			AccountID string          `json:"account_id"`
			Balance   decimal.Decimal `json:"balance"`
		}{accountID, balance})
	})

	// deposit and withdraw share a request shape, so one handler builder
	// covers both.
	singleAccountOp := func(op func(r *http.Request, accountID string, amount decimal.Decimal) (decimal.Decimal, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}

			var req struct {
				AccountID string          `json:"account_id"`
				Amount    decimal.Decimal `json:"amount"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}

			balance, err := op(r, req.AccountID, req.Amount)
			if errors.Is(err, models.ErrLog) {
				log.Printf("audit gap on %s: %v", req.AccountID, err)
			} else if err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}

			writeJSON(w, http.StatusOK, struct {
				AccountID string          `json:"account_id"`
				Balance   decimal.Decimal `json:"balance"`
			}{req.AccountID, balance})
		}
	}

	http.HandleFunc("/accounts/deposit", singleAccountOp(func(r *http.Request, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
		return engine.Deposit(r.Context(), accountID, amount)
	}))

	http.HandleFunc("/accounts/withdraw", singleAccountOp(func(r *http.Request, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
		return engine.Withdraw(r.Context(), accountID, amount)
	}))

	http.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			FromAccount string          `json:"from_account"`
			ToAccount   string          `json:"to_account"`
			Amount      decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		fromBalance, toBalance, err := engine.Transfer(r.Context(), req.FromAccount, req.ToAccount, req.Amount)
		if errors.Is(err, models.ErrLog) {
			log.Printf("audit gap on transfer %s -> %s: %v", req.FromAccount, req.ToAccount, err)
		} else if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		writeJSON(w, http.StatusOK, struct {
			FromAccount string          `json:"from_account"`
			FromBalance decimal.Decimal `json:"from_balance"`
			ToAccount   string          `json:"to_account"`
			ToBalance   decimal.Decimal `json:"to_balance"`
		}{req.FromAccount, fromBalance, req.ToAccount, toBalance})
	})

	http.HandleFunc("/audit/records", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, auditMemory.Records())
	})

	log.Printf("Starting server on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
