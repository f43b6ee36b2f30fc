package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/models"
)

// AddWishlistItemHandler appends an item to the caller's wishlist.
func AddWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	item := models.WishlistItem{
		UserID: userID,
		Name:   req.Name,
		URL:    req.URL,
		Note:   req.Note,
	}
	if err := database.AddWishlistItem(r.Context(), &item); err != nil {
		http.Error(w, "error adding wishlist item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// ListWishlistHandler returns the caller's own wishlist.
func ListWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := database.ListWishlist(r.Context(), userID)
	if err != nil {
		http.Error(w, "error listing wishlist", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// ReceiverWishlistHandler returns the wishlist of the caller's receiver
// in a game: GET /wishlist/receiver/{gameID}. Only the gifter may look.
func ReceiverWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "/wishlist/receiver/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	pair, err := database.GetPairForGifter(r.Context(), gameID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "no assignment for you in this game", http.StatusNotFound)
			return
		}
		http.Error(w, "error fetching pair", http.StatusInternalServerError)
		return
	}

	items, err := database.ListWishlist(r.Context(), pair.ReceiverID)
	if err != nil {
		http.Error(w, "error listing wishlist", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// RemoveWishlistItemHandler deletes one of the caller's items.
func RemoveWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := database.RemoveWishlistItem(r.Context(), userID, itemID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "wishlist item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "error removing wishlist item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
