package tracking

import (
	"bytes"
	"errors"
	"time"

	"backend-ihiker/internal/auth"
	"backend-ihiker/internal/gpx"
	"backend-ihiker/internal/recording"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type startRequest struct {
	Fixes []recording.GeoSample `json:"fixes"`
}

type fixErrorRequest struct {
	Reason string `json:"reason"`
}

type commandResponse struct {
	View
	Changed bool `json:"changed"`
}

func RegisterRoutes(r fiber.Router, svc *Service, mgr *Manager, authMiddleware fiber.Handler) {
	rec := r.Group("/recorder", authMiddleware)

	rec.Get("/", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(mgr.View(userID))
	})

	rec.Post("/start", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		var req startRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		view, changed := mgr.Start(userID, req.Fixes)
		return c.JSON(commandResponse{View: view, Changed: changed})
	})

	rec.Post("/pause", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		view, changed := mgr.Pause(userID)
		return c.JSON(commandResponse{View: view, Changed: changed})
	})

	rec.Post("/resume", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		view, changed := mgr.Resume(userID)
		return c.JSON(commandResponse{View: view, Changed: changed})
	})

	rec.Post("/stop", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(mgr.Stop(c.Context(), userID))
	})

	rec.Post("/save", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		res, err := mgr.Save(c.Context(), userID)
		if errors.Is(err, ErrNoSession) {
			return fiber.NewError(fiber.StatusConflict, "no completed session to save")
		}
		if errors.Is(err, ErrEmptySession) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	rec.Post("/fixes", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		var req recording.GeoSample
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "lat/lng out of range")
		}
		if err := mgr.PushFix(userID, req); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	rec.Post("/fix-errors", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		var req fixErrorRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		mgr.PushFixError(userID, req.Reason)
		return c.SendStatus(fiber.StatusAccepted)
	})

	rec.Get("/export.gpx", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		doc, err := mgr.Export(userID)
		if err != nil {
			return exportError(err)
		}
		return sendGPX(c, doc)
	})

	rec.Get("/share", func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		text, err := mgr.Share(userID)
		if err != nil {
			return exportError(err)
		}
		return c.JSON(fiber.Map{"text": text})
	})

	r.Get("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		tracks, err := svc.ListSessions(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(tracks)
	})

	r.Get("/sessions/:id/points", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		if _, err := svc.GetSession(c.Context(), userID, id); err != nil {
			return sessionError(err)
		}
		points, err := svc.ListPoints(c.Context(), id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(points)
	})

	r.Get("/sessions/:id/export.gpx", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		id, err := sessionID(c)
		if err != nil {
			return err
		}
		track, err := svc.GetSession(c.Context(), userID, id)
		if err != nil {
			return sessionError(err)
		}
		points, err := svc.ListPoints(c.Context(), track.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		doc, err := gpx.Build(track.Name, points, time.Now())
		if err != nil {
			return exportError(err)
		}
		return sendGPX(c, doc)
	})

	r.Get("/stats", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		stats, err := svc.Stats(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})
}

func sendGPX(c *fiber.Ctx, doc *gpx.GPX) error {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/gpx+xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="track.gpx"`)
	return c.Send(buf.Bytes())
}

func exportError(err error) error {
	if errors.Is(err, gpx.ErrEmptyPath) {
		return fiber.NewError(fiber.StatusBadRequest, "no track data to export")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// sessionID rejects ids that cannot name a stored hike before they reach the
// database.
func sessionID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusNotFound, ErrNoSession.Error())
	}
	return id.String(), nil
}

func sessionError(err error) error {
	if errors.Is(err, ErrNoSession) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
