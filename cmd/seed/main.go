// seed carga datos de demostración: una farmacia, un cliente y un catálogo
// básico de medicamentos con stock tarifado.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración de DB que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/infrastructure/postgres"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/config"
)

type seedMedication struct {
	commercialName       string
	activeIngredient     string
	presentation         string
	requiresPrescription bool
	laboratory           string
	category             string
	price                string
	quantity             int64
}

var medications = []seedMedication{
	{"Tafirol 500", "Paracetamol", "comprimidos 500mg x10", false, "Genomma Lab", "analgésico", "1500.00", 120},
	{"Ibupirac 400", "Ibuprofeno", "comprimidos 400mg x10", false, "Pfizer", "antiinflamatorio", "2100.50", 80},
	{"Amoxidal 500", "Amoxicilina", "comprimidos 500mg x8", true, "Roemmers", "antibiótico", "4800.00", 40},
	{"Lotrial 10", "Enalapril", "comprimidos 10mg x30", true, "Roemmers", "antihipertensivo", "3550.75", 60},
	{"Actron 600", "Ibuprofeno", "cápsulas 600mg x10", false, "Bayer", "antiinflamatorio", "2890.00", 50},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	medicationRepo := postgres.NewMedicationRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte("farmago123"), bcrypt.DefaultCost)
	if err != nil {
		fail("hashear password", err)
	}

	pharmacy := &entity.Pharmacy{
		User: entity.User{
			ID:           uuid.New().String(),
			Email:        "farmacia@farmago.test",
			PasswordHash: string(hash),
			FirstName:    "Laura",
			LastName:     "Martínez",
			Phone:        "+54 11 4000-1234",
			Address:      "Av. Corrientes 1234, CABA",
			Role:         entity.RolePharmacy,
			CreatedAt:    time.Now(),
		},
		TradeName: "Farmacia Central",
		CUIT:      "30-71234567-8",
		OpensAt:   "08:00",
		ClosesAt:  "22:00",
	}
	if err := userRepo.CreatePharmacy(pharmacy); err != nil {
		fail("crear farmacia demo", err)
	}
	fmt.Printf("farmacia: %s (%s)\n", pharmacy.TradeName, pharmacy.Email)

	client := &entity.Client{
		User: entity.User{
			ID:           uuid.New().String(),
			Email:        "cliente@farmago.test",
			PasswordHash: string(hash),
			FirstName:    "Julián",
			LastName:     "Pérez",
			Phone:        "+54 11 5000-5678",
			Address:      "Callao 850, CABA",
			Role:         entity.RoleClient,
			CreatedAt:    time.Now(),
		},
		DNI:             "38123456",
		HealthInsurance: "OSDE 210",
	}
	if err := userRepo.CreateClient(client); err != nil {
		fail("crear cliente demo", err)
	}
	fmt.Printf("cliente: %s %s (%s)\n", client.FirstName, client.LastName, client.Email)

	for _, sm := range medications {
		med := &entity.Medication{
			ID:                   uuid.New().String(),
			CommercialName:       sm.commercialName,
			ActiveIngredient:     sm.activeIngredient,
			Presentation:         sm.presentation,
			RequiresPrescription: sm.requiresPrescription,
			Laboratory:           sm.laboratory,
			Category:             sm.category,
			CreatedAt:            time.Now(),
		}
		if err := medicationRepo.Create(med); err != nil {
			fail("crear medicamento "+sm.commercialName, err)
		}
		price, err := decimal.NewFromString(sm.price)
		if err != nil {
			fail("precio de "+sm.commercialName, err)
		}
		if err := stockRepo.Upsert(&entity.Stock{
			PharmacyID:   pharmacy.ID,
			MedicationID: med.ID,
			Price:        price,
			Quantity:     sm.quantity,
		}); err != nil {
			fail("stock de "+sm.commercialName, err)
		}
		fmt.Printf("medicamento: %s ($%s x%d)\n", sm.commercialName, sm.price, sm.quantity)
	}

	fmt.Println("seed completado")
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
