package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// --- Users ---

// CreateUser handles POST /users/.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.CreateUser(r.Context(), &user); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user created", "id_user", user.IDUser)
	writeJSON(w, http.StatusOK, user)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.graph.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.UpdateUser(r.Context(), userID, &user); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}: removes the user and cascades
// to its links and cluster membership.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.graph.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user deleted", "id_user", userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// --- Links ---

// CreateLink handles POST /links/.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var link domain.Link
	if err := decodeJSON(r, &link); err != nil {
		writeError(w, err)
		return
	}

	if link.Weight == 0 {
		link.Weight = 1.0
	}

	if err := h.graph.CreateLink(r.Context(), &link); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// ListLinks handles GET /links/ with an optional cluster_id filter.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	clusterID := r.URL.Query().Get("cluster_id")

	links, err := h.graph.Links(r.Context(), clusterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links": links,
		"count": len(links),
	})
}

// GetLink handles GET /links/{src}/{tgt}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.graph.GetLink(r.Context(), chi.URLParam(r, "src"), chi.URLParam(r, "tgt"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// DeleteLink handles DELETE /links/{src}/{tgt}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.graph.DeleteLink(r.Context(), chi.URLParam(r, "src"), chi.URLParam(r, "tgt")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Link deleted successfully"})
}

// GenerateLinks handles POST /generate_links/.
func (h *Handler) GenerateLinks(w http.ResponseWriter, r *http.Request) {
	created, err := h.graph.GenerateLinks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Links generated successfully",
		"created": created,
	})
}

// --- Clusters ---

// ClusterNodes handles POST /cluster_nodes/.
func (h *Handler) ClusterNodes(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.graph.ClusterNodes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Clustering completed successfully",
		"clusters": clusters,
		"count":    len(clusters),
	})
}

// ListClusters handles GET /clusters/.
func (h *Handler) ListClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.graph.Clusters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clusters": clusters,
		"count":    len(clusters),
	})
}

// GetCluster handles GET /clusters/{id}.
func (h *Handler) GetCluster(w http.ResponseWriter, r *http.Request) {
	cluster, err := h.graph.Cluster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cluster)
}

// --- Graph rules ---

// CreateGraphRule handles POST /graph_rules/.
func (h *Handler) CreateGraphRule(w http.ResponseWriter, r *http.Request) {
	var rule domain.GraphRule
	if err := decodeJSON(r, &rule); err != nil {
		writeError(w, err)
		return
	}

	if rule.RuleID == "" {
		rule.RuleID = uuid.New().String()
	}

	if err := h.graph.CreateGraphRule(r.Context(), &rule); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("graph rule created", "rule_id", rule.RuleID, "name", rule.Name)
	writeJSON(w, http.StatusOK, rule)
}

// ListGraphRules handles GET /graph_rules/.
func (h *Handler) ListGraphRules(w http.ResponseWriter, r *http.Request) {
	rulesList, err := h.graph.ListGraphRules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"graph_rules": rulesList,
		"count":       len(rulesList),
	})
}

// GetGraphRule handles GET /graph_rules/{id}.
func (h *Handler) GetGraphRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.graph.GetGraphRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// UpdateGraphRule handles PUT /graph_rules/{id}.
func (h *Handler) UpdateGraphRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	var rule domain.GraphRule
	if err := decodeJSON(r, &rule); err != nil {
		writeError(w, err)
		return
	}

	if err := h.graph.UpdateGraphRule(r.Context(), ruleID, &rule); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// DeleteGraphRule handles DELETE /graph_rules/{id}: the rule's links are
// cascaded away with it.
func (h *Handler) DeleteGraphRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if err := h.graph.DeleteGraphRule(r.Context(), ruleID); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("graph rule deleted", "rule_id", ruleID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Graph rule deleted successfully"})
}
