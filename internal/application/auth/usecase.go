package auth

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/dto"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase registro de clientes y farmacias, login y perfil.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// RegisterClient crea un cliente: hashea password con bcrypt, persiste y
// devuelve sesión iniciada. ErrEmailAlreadyExists si el email ya está en uso.
func (uc *AuthUseCase) RegisterClient(in dto.RegisterClientRequest) (*dto.LoginResponse, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.DNI == "" {
		return nil, domain.ErrInvalidInput
	}
	if existing, _ := uc.userRepo.FindByEmail(in.Email); existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var birthDate *time.Time
	if in.BirthDate != "" {
		t, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		birthDate = &t
	}

	client := &entity.Client{
		User: entity.User{
			ID:           uuid.New().String(),
			Email:        in.Email,
			PasswordHash: string(hash),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Phone:        in.Phone,
			Address:      in.Address,
			Role:         entity.RoleClient,
			CreatedAt:    time.Now(),
		},
		DNI:             in.DNI,
		BirthDate:       birthDate,
		HealthInsurance: in.HealthInsurance,
	}
	if err := uc.userRepo.CreateClient(client); err != nil {
		return nil, err
	}
	return uc.session(client)
}

// RegisterPharmacy crea una farmacia y devuelve sesión iniciada.
func (uc *AuthUseCase) RegisterPharmacy(in dto.RegisterPharmacyRequest) (*dto.LoginResponse, error) {
	if in.Email == "" || in.Password == "" || in.TradeName == "" || in.CUIT == "" {
		return nil, domain.ErrInvalidInput
	}
	if existing, _ := uc.userRepo.FindByEmail(in.Email); existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	opensAt := in.OpensAt
	if opensAt == "" {
		opensAt = "08:00"
	}
	closesAt := in.ClosesAt
	if closesAt == "" {
		closesAt = "20:00"
	}

	pharmacy := &entity.Pharmacy{
		User: entity.User{
			ID:           uuid.New().String(),
			Email:        in.Email,
			PasswordHash: string(hash),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Phone:        in.Phone,
			Address:      in.Address,
			Role:         entity.RolePharmacy,
			CreatedAt:    time.Now(),
		},
		TradeName: in.TradeName,
		CUIT:      in.CUIT,
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := uc.userRepo.CreatePharmacy(pharmacy); err != nil {
		return nil, err
	}
	return uc.session(pharmacy)
}

// Login verifica email/password contra la variante que sea y genera JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	principal, err := uc.userRepo.FindByEmail(in.Email)
	if err != nil || principal == nil {
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHashOf(principal)), []byte(in.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.session(principal)
}

// GetProfile perfil del usuario autenticado con los campos de su variante.
func (uc *AuthUseCase) GetProfile(userID string) (*dto.ProfileResponse, error) {
	principal, err := uc.userRepo.FindByID(userID)
	if err != nil || principal == nil {
		return nil, domain.ErrNotFound
	}
	resp := &dto.ProfileResponse{UserResponse: toUserResponse(principal)}
	switch p := principal.(type) {
	case *entity.Client:
		resp.DNI = p.DNI
		resp.HealthInsurance = p.HealthInsurance
		if p.BirthDate != nil {
			resp.BirthDate = p.BirthDate.Format("2006-01-02")
		}
	case *entity.Pharmacy:
		resp.TradeName = p.TradeName
		resp.CUIT = p.CUIT
		resp.OpensAt = p.OpensAt
		resp.ClosesAt = p.ClosesAt
		resp.Latitude = p.Latitude
		resp.Longitude = p.Longitude
	}
	return resp, nil
}

// UpdateProfile actualiza los campos base de la identidad (no la contraseña).
func (uc *AuthUseCase) UpdateProfile(userID string, in dto.UpdateProfileRequest) error {
	principal, err := uc.userRepo.FindByID(userID)
	if err != nil || principal == nil {
		return domain.ErrNotFound
	}
	fields := map[string]string{}
	if in.FirstName != "" {
		fields["first_name"] = in.FirstName
	}
	if in.LastName != "" {
		fields["last_name"] = in.LastName
	}
	if in.Phone != "" {
		fields["phone"] = in.Phone
	}
	if in.Address != "" {
		fields["address"] = in.Address
	}
	if len(fields) == 0 {
		return domain.ErrInvalidInput
	}
	return uc.userRepo.UpdateProfile(userID, fields)
}

func (uc *AuthUseCase) session(principal entity.Principal) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, principal.PrincipalID(), principal.PrincipalRole(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:    token,
		Type:     "bearer",
		UserID:   principal.PrincipalID(),
		UserRole: principal.PrincipalRole(),
		User:     toUserResponse(principal),
	}, nil
}

func passwordHashOf(principal entity.Principal) string {
	switch p := principal.(type) {
	case *entity.Client:
		return p.PasswordHash
	case *entity.Pharmacy:
		return p.PasswordHash
	}
	return ""
}

func toUserResponse(principal entity.Principal) dto.UserResponse {
	switch p := principal.(type) {
	case *entity.Client:
		return dto.UserResponse{
			ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName,
			Phone: p.Phone, Address: p.Address, Role: p.Role, CreatedAt: p.CreatedAt,
		}
	case *entity.Pharmacy:
		return dto.UserResponse{
			ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName,
			Phone: p.Phone, Address: p.Address, Role: p.Role, CreatedAt: p.CreatedAt,
		}
	}
	return dto.UserResponse{}
}
