// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package httpapi exposes the engine's domain services as gin routes,
// following the teacher's handlers-wrap-a-service convention: a thin
// struct holding the service, one method per route, ShouldBindJSON plus
// a gin.H{"error": ...} error shape.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/filemove"
	"github.com/amd-aig/workflow-engine/pkg/logger/log"
)

// FileMoveHandler exposes the multipart/move/flash-upload pipeline.
type FileMoveHandler struct {
	moves *filemove.Service
}

// NewFileMoveHandler builds a FileMoveHandler over moves.
func NewFileMoveHandler(moves *filemove.Service) *FileMoveHandler {
	return &FileMoveHandler{moves: moves}
}

type prepareRequest struct {
	MetaID      string             `json:"metaId"`
	Hash        string             `json:"hash" binding:"required"`
	Algorithm   string             `json:"algorithm"`
	Size        int64              `json:"size"`
	PartCount   int                `json:"partCount" binding:"required"`
	Destination domain.Destination `json:"destination" binding:"required"`
	FlowID      string             `json:"flowId"`
	UserID      string             `json:"userId"`
	FileName    string             `json:"fileName"`
}

// Prepare handles POST /files/prepare: declares an upload's hash/size
// before any bytes move, and reports whether it can be flash-completed,
// resumed, or needs fresh chunk transfer.
func (h *FileMoveHandler) Prepare(c *gin.Context) {
	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	outcome, err := h.moves.Prepare(c.Request.Context(), filemove.PrepareInfo{
		MetaID:      req.MetaID,
		Hash:        req.Hash,
		Algorithm:   req.Algorithm,
		Size:        req.Size,
		PartCount:   req.PartCount,
		Destination: req.Destination,
		FlowID:      req.FlowID,
		UserID:      req.UserID,
		FileName:    req.FileName,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": outcome.Result, "metaId": outcome.MetaID})
}

type completePartRequest struct {
	MetaID  string `json:"metaId" binding:"required"`
	Nth     int    `json:"nth"`
	Content []byte `json:"content" binding:"required"`
}

// CompletePart handles POST /files/parts: registers one received chunk
// and triggers reassembly once every declared part has landed.
func (h *FileMoveHandler) CompletePart(c *gin.Context) {
	var req completePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	missing, err := h.moves.CompletePart(c.Request.Context(), req.MetaID, req.Nth, req.Content)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"missingParts": missing})
}

// RegisterMove handles POST /files/moves: declares a destination this
// meta id's content should be delivered to once assembled.
func (h *FileMoveHandler) RegisterMove(c *gin.Context) {
	var reg domain.MoveRegistration
	if err := c.ShouldBindJSON(&reg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.moves.RegisterMove(c.Request.Context(), &reg); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

// writeDomainError maps the move pipeline's closed error set onto HTTP
// status codes; anything unrecognized is a 500.
func writeDomainError(c *gin.Context, err error) {
	var flashErr *domain.FlashUploadError
	var conflictID *domain.ConflictedIDError
	var conflictHash *domain.ConflictedHashError
	var notFound *domain.MultipartNotFoundError
	var diffHash *domain.DifferentHashesError

	switch {
	case errors.As(err, &flashErr):
		c.JSON(http.StatusOK, gin.H{"result": "FlashUpload", "metaId": flashErr.CanonicalMetaID})
	case errors.As(err, &conflictID):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicted id", "details": err.Error()})
	case errors.As(err, &conflictHash):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicted hash", "details": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": err.Error()})
	case errors.As(err, &diffHash):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "hash mismatch", "details": err.Error()})
	default:
		log.Errorf("httpapi: file-move request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
