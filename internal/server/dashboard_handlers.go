package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type DashboardCounts struct {
	Products       int `json:"products"`
	ActiveProducts int `json:"active_products"`
	Categories     int `json:"categories"`
	Articles       int `json:"articles"`
	Inquiries      int `json:"inquiries"`
	NewInquiries   int `json:"new_inquiries"`
	Subscribers    int `json:"subscribers"`
}

type CategoryStat struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
}

type Dashboard struct {
	Counts          DashboardCounts `json:"counts"`
	RecentInquiries []Inquiry       `json:"recent_inquiries"`
	TopCategories   []CategoryStat  `json:"top_categories"`
}

func (s *Server) GetDashboard(ctx echo.Context) error {
	d, err := s.server.GetDashboard(ctx.Request().Context())
	if err != nil {
		return s.errorResponse(ctx, "GetDashboard", err, nil)
	}

	res := Dashboard{
		Counts:          DashboardCounts(d.Counts),
		RecentInquiries: make([]Inquiry, 0, len(d.RecentInquiries)),
		TopCategories:   make([]CategoryStat, 0, len(d.TopCategories)),
	}
	for _, in := range d.RecentInquiries {
		res.RecentInquiries = append(res.RecentInquiries, newInquiryRes(in))
	}
	for _, c := range d.TopCategories {
		res.TopCategories = append(res.TopCategories, CategoryStat{
			CategoryID: c.CategoryID.String(),
			Name:       c.Name,
			Count:      c.Count,
		})
	}
	return ctx.JSON(http.StatusOK, Res{Data: res})
}

func (s *Server) healthHandler(ctx echo.Context) error {
	health := s.server.Health()
	if health["status"] != "up" {
		return ctx.JSON(http.StatusServiceUnavailable, health)
	}
	return ctx.JSON(http.StatusOK, health)
}
