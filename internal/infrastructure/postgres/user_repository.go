package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación de UserRepository sobre PostgreSQL. La identidad
// base vive en users; los campos propios de cada variante en clients y
// pharmacies (una fila por usuario según su rol).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// CreateClient inserta la identidad base y la fila de cliente.
func (r *UserRepo) CreateClient(client *entity.Client) error {
	ctx := context.Background()
	if err := r.insertUser(ctx, &client.User); err != nil {
		return err
	}
	query := `
		INSERT INTO clients (user_id, dni, birth_date, health_insurance)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, client.ID, client.DNI, client.BirthDate, nullIfEmpty(client.HealthInsurance))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// CreatePharmacy inserta la identidad base y la fila de farmacia.
func (r *UserRepo) CreatePharmacy(pharmacy *entity.Pharmacy) error {
	ctx := context.Background()
	if err := r.insertUser(ctx, &pharmacy.User); err != nil {
		return err
	}
	query := `
		INSERT INTO pharmacies (user_id, trade_name, cuit, opens_at, closes_at, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		pharmacy.ID, pharmacy.TradeName, pharmacy.CUIT,
		pharmacy.OpensAt, pharmacy.ClosesAt, pharmacy.Latitude, pharmacy.Longitude,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create pharmacy: %w", err)
	}
	return nil
}

func (r *UserRepo) insertUser(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, address, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, nullIfEmpty(u.LastName),
		nullIfEmpty(u.Phone), nullIfEmpty(u.Address), u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail devuelve la variante concreta según el rol almacenado.
func (r *UserRepo) FindByEmail(email string) (entity.Principal, error) {
	return r.findBy("u.email = $1", email)
}

// FindByID devuelve la variante concreta según el rol almacenado.
func (r *UserRepo) FindByID(id string) (entity.Principal, error) {
	return r.findBy("u.id = $1", id)
}

func (r *UserRepo) findBy(cond string, arg any) (entity.Principal, error) {
	ctx := context.Background()
	query := `
		SELECT id, email, password_hash, first_name, COALESCE(last_name, ''),
		       COALESCE(phone, ''), COALESCE(address, ''), role, created_at
		FROM users u WHERE ` + cond
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Address, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	switch u.Role {
	case entity.RoleClient:
		client := &entity.Client{User: u}
		err = r.q.QueryRow(ctx, `
			SELECT dni, birth_date, COALESCE(health_insurance, '')
			FROM clients WHERE user_id = $1`, u.ID,
		).Scan(&client.DNI, &client.BirthDate, &client.HealthInsurance)
		if err != nil {
			return nil, fmt.Errorf("find client: %w", err)
		}
		return client, nil
	case entity.RolePharmacy:
		pharmacy := &entity.Pharmacy{User: u}
		err = r.q.QueryRow(ctx, `
			SELECT trade_name, cuit, opens_at, closes_at, latitude, longitude
			FROM pharmacies WHERE user_id = $1`, u.ID,
		).Scan(&pharmacy.TradeName, &pharmacy.CUIT, &pharmacy.OpensAt, &pharmacy.ClosesAt,
			&pharmacy.Latitude, &pharmacy.Longitude)
		if err != nil {
			return nil, fmt.Errorf("find pharmacy: %w", err)
		}
		return pharmacy, nil
	}
	return nil, fmt.Errorf("rol desconocido: %s", u.Role)
}

// GetClientByID devuelve el cliente o ErrNotFound si el id no es de un cliente.
func (r *UserRepo) GetClientByID(id string) (*entity.Client, error) {
	principal, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	client, ok := principal.(*entity.Client)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

// GetPharmacyByID devuelve la farmacia o ErrNotFound si el id no es de una farmacia.
func (r *UserRepo) GetPharmacyByID(id string) (*entity.Pharmacy, error) {
	principal, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	pharmacy, ok := principal.(*entity.Pharmacy)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return pharmacy, nil
}

// UpdateProfile actualiza campos base del usuario. fields mapea columna -> valor;
// las columnas permitidas están acotadas para no armar SQL con claves arbitrarias.
func (r *UserRepo) UpdateProfile(userID string, fields map[string]string) error {
	allowed := map[string]bool{"first_name": true, "last_name": true, "phone": true, "address": true}
	var sets []string
	var args []any
	i := 1
	for col, val := range fields {
		if !allowed[col] {
			return fmt.Errorf("%w: campo %s no editable", domain.ErrInvalidInput, col)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	if len(sets) == 0 {
		return domain.ErrInvalidInput
	}
	args = append(args, userID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), i)
	tag, err := r.q.Exec(context.Background(), query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
