package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/auth"
	"github.com/avaldez/poketeams/internal/service"
	"github.com/avaldez/poketeams/pkg/logger"
)

type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type Handler struct {
	team    *service.TeamService
	pokemon *service.PokemonService
	user    *service.UserService

	tokens        *auth.TokenManager
	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithTeamService(team *service.TeamService) *Handler {
	h.team = team
	return h
}

func (h *Handler) WithPokemonService(pokemon *service.PokemonService) *Handler {
	h.pokemon = pokemon
	return h
}

func (h *Handler) WithUserService(user *service.UserService) *Handler {
	h.user = user
	return h
}

func (h *Handler) WithTokenManager(tokens *auth.TokenManager) *Handler {
	h.tokens = tokens
	return h
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.healthChecker.HealthCheck())

	e.POST("/register", h.Register)
	e.POST("/login", h.Login)

	secured := e.Group("", AuthMiddleware(h.tokens))

	secured.GET("/profile", h.Profile)

	secured.GET("/teams", h.ListTeams)
	secured.POST("/teams", h.CreateTeam)
	secured.GET("/teams/:id", h.GetTeam)
	secured.PUT("/teams/:id", h.UpdateTeam)
	secured.DELETE("/teams/:id", h.DeleteTeam)
	secured.POST("/teams/:id/activate", h.ActivateTeam)

	secured.POST("/teams/:teamId/pokemon", h.AddPokemon)
	secured.PUT("/teams/:teamId/pokemon/:pokemonId", h.UpdatePokemon)
	secured.DELETE("/teams/:teamId/pokemon/:pokemonId", h.RemovePokemon)
	secured.POST("/teams/:teamId/swap-positions", h.SwapPositions)
}

func (h *Handler) Register(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name       string  `json:"name" validate:"required,max=255"`
		Email      string  `json:"email" validate:"required,email"`
		Password   string  `json:"password" validate:"required,min=6"`
		Address    *string `json:"address" validate:"omitempty,max=255"`
		Phone      *string `json:"phone" validate:"omitempty,max=255"`
		DocumentID *string `json:"document_id"`
		Gender     string  `json:"gender" validate:"required,oneof=male female"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("registering user", zap.String("email", req.Email))

	user, err := h.user.Register(e.Request().Context(), &service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Address:    req.Address,
		Phone:      req.Phone,
		DocumentID: req.DocumentID,
		Gender:     req.Gender,
	})
	if err != nil {
		l.Error("failed to register user", zap.String("email", req.Email), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, response{
		Success: true,
		Message: "user registered successfully",
		Data:    user,
	})
}

func (h *Handler) Login(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("logging in", zap.String("email", req.Email))

	result, err := h.user.Login(e.Request().Context(), req.Email, req.Password)
	if err != nil {
		l.Error("failed to log in", zap.String("email", req.Email), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Data:    result,
	})
}

func (h *Handler) Profile(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	user, err := h.user.Profile(e.Request().Context(), userID)
	if err != nil {
		l.Error("failed to get profile", zap.Int64("user_id", userID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Data:    user,
	})
}

func (h *Handler) ListTeams(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	teams, err := h.team.ListTeams(e.Request().Context(), userID)
	if err != nil {
		l.Error("failed to list teams", zap.Int64("user_id", userID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Data:    teams,
	})
}

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name        string  `json:"name" validate:"required,max=255"`
		Description *string `json:"description" validate:"omitempty,max=1000"`
		IsActive    bool    `json:"is_active"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := currentUserID(e)

	l.Info("creating team", zap.Int64("user_id", userID), zap.String("name", req.Name))

	team, err := h.team.CreateTeam(e.Request().Context(), userID, &service.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		l.Error("failed to create team", zap.Int64("user_id", userID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, response{
		Success: true,
		Message: "team created successfully",
		Data:    team,
	})
}

func (h *Handler) GetTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("id"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	team, svcErr := h.team.GetTeam(e.Request().Context(), userID, teamID)
	if svcErr != nil {
		l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Data:    team,
	})
}

func (h *Handler) UpdateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name        string  `json:"name" validate:"required,max=255"`
		Description *string `json:"description" validate:"omitempty,max=1000"`
		IsActive    *bool   `json:"is_active"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("id"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	l.Info("updating team", zap.Int64("team_id", teamID))

	team, svcErr := h.team.UpdateTeam(e.Request().Context(), userID, teamID, &service.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if svcErr != nil {
		l.Error("failed to update team", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "team updated successfully",
		Data:    team,
	})
}

func (h *Handler) DeleteTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("id"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	l.Info("deleting team", zap.Int64("team_id", teamID))

	if svcErr := h.team.DeleteTeam(e.Request().Context(), userID, teamID); svcErr != nil {
		l.Error("failed to delete team", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "team deleted successfully",
	})
}

func (h *Handler) ActivateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("id"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	l.Info("activating team", zap.Int64("team_id", teamID))

	team, svcErr := h.team.ActivateTeam(e.Request().Context(), userID, teamID)
	if svcErr != nil {
		l.Error("failed to activate team", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "team activated successfully",
		Data:    team,
	})
}

func (h *Handler) AddPokemon(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		PokemonID   int            `json:"pokemon_id" validate:"required,min=1"`
		PokemonName string         `json:"pokemon_name" validate:"required,max=255"`
		Nickname    *string        `json:"nickname" validate:"omitempty,max=255"`
		Level       *int           `json:"level"`
		Position    *int           `json:"position"`
		Ability     *string        `json:"ability" validate:"omitempty,max=255"`
		Nature      *string        `json:"nature" validate:"omitempty,max=255"`
		HeldItem    *string        `json:"held_item" validate:"omitempty,max=255"`
		Moves       []string       `json:"moves"`
		Stats       map[string]int `json:"stats"`
		SpriteURL   *string        `json:"sprite_url" validate:"omitempty,url"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("teamId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	l.Info("adding pokemon",
		zap.Int64("team_id", teamID),
		zap.String("pokemon_name", req.PokemonName))

	pokemon, svcErr := h.pokemon.AddPokemon(e.Request().Context(), userID, teamID, &service.AddPokemonInput{
		PokemonID:   req.PokemonID,
		PokemonName: req.PokemonName,
		Nickname:    req.Nickname,
		Level:       req.Level,
		Position:    req.Position,
		Ability:     req.Ability,
		Nature:      req.Nature,
		HeldItem:    req.HeldItem,
		Moves:       req.Moves,
		Stats:       req.Stats,
		SpriteURL:   req.SpriteURL,
	})
	if svcErr != nil {
		l.Error("failed to add pokemon", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusCreated, response{
		Success: true,
		Message: "pokemon added to team successfully",
		Data:    pokemon,
	})
}

func (h *Handler) UpdatePokemon(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Nickname *string        `json:"nickname" validate:"omitempty,max=255"`
		Level    *int           `json:"level"`
		Position *int           `json:"position"`
		Ability  *string        `json:"ability" validate:"omitempty,max=255"`
		Nature   *string        `json:"nature" validate:"omitempty,max=255"`
		HeldItem *string        `json:"held_item" validate:"omitempty,max=255"`
		Moves    []string       `json:"moves"`
		Stats    map[string]int `json:"stats"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("teamId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}
	pokemonID, err := parseID(e.Param("pokemonId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "pokemon not found in team"))
	}

	l.Info("updating pokemon", zap.Int64("team_id", teamID), zap.Int64("pokemon_id", pokemonID))

	pokemon, svcErr := h.pokemon.UpdatePokemon(e.Request().Context(), userID, teamID, pokemonID, &service.UpdatePokemonInput{
		Nickname: req.Nickname,
		Level:    req.Level,
		Position: req.Position,
		Ability:  req.Ability,
		Nature:   req.Nature,
		HeldItem: req.HeldItem,
		Moves:    req.Moves,
		Stats:    req.Stats,
	})
	if svcErr != nil {
		l.Error("failed to update pokemon", zap.Int64("pokemon_id", pokemonID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "pokemon updated successfully",
		Data:    pokemon,
	})
}

func (h *Handler) RemovePokemon(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("teamId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}
	pokemonID, err := parseID(e.Param("pokemonId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "pokemon not found in team"))
	}

	l.Info("removing pokemon", zap.Int64("team_id", teamID), zap.Int64("pokemon_id", pokemonID))

	if svcErr := h.pokemon.RemovePokemon(e.Request().Context(), userID, teamID, pokemonID); svcErr != nil {
		l.Error("failed to remove pokemon", zap.Int64("pokemon_id", pokemonID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "pokemon removed from team successfully",
	})
}

func (h *Handler) SwapPositions(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Pokemon1ID int64 `json:"pokemon1_id" validate:"required"`
		Pokemon2ID int64 `json:"pokemon2_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	userID := currentUserID(e)

	teamID, err := parseID(e.Param("teamId"))
	if err != nil {
		return h.transportError(e, service.NewError(service.ErrorCodeNotFound, "team not found"))
	}

	l.Info("swapping positions",
		zap.Int64("team_id", teamID),
		zap.Int64("pokemon1_id", req.Pokemon1ID),
		zap.Int64("pokemon2_id", req.Pokemon2ID))

	team, svcErr := h.pokemon.SwapPositions(e.Request().Context(), userID, teamID, req.Pokemon1ID, req.Pokemon2ID)
	if svcErr != nil {
		l.Error("failed to swap positions", zap.Int64("team_id", teamID), zap.Any("error", svcErr))
		return h.transportError(e, svcErr)
	}

	return e.JSON(http.StatusOK, response{
		Success: true,
		Message: "positions swapped successfully",
		Data:    team,
	})
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewValidationError(
			errors.Wrap(err, "request validation failed").Error(),
			FieldErrors(err),
		)
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	res := response{
		Success: false,
		Message: err.Message,
		Errors:  err.Fields,
	}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, res)
	case service.ErrorCodeTeamFull, service.ErrorCodePositionOccupied:
		return e.JSON(http.StatusBadRequest, res)
	case service.ErrorCodeInvalidBody, service.ErrorCodeEmailExists:
		return e.JSON(http.StatusUnprocessableEntity, res)
	case service.ErrorCodeInvalidCredentials, service.ErrorCodeUnauthorized:
		return e.JSON(http.StatusUnauthorized, res)
	default:
		return e.JSON(http.StatusInternalServerError, res)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
