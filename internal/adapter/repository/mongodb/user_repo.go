package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads owner contact data from the shared users collection.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		logger:     log,
	}
}

func (r *UserRepository) GetEmailByID(ctx context.Context, userID string) (string, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		r.logger.Error("UserRepository.GetEmailByID: invalid userID", "userID", userID, "error", err)
		return "", fmt.Errorf("invalid user ID format: %w", err)
	}

	var userDoc struct {
		Email string `bson:"email"`
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&userDoc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Info("UserRepository.GetEmailByID: user not found", "userID", userID)
		return "", ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("UserRepository.GetEmailByID: failed to find user", "userID", userID, "error", err)
		return "", err
	}
	return userDoc.Email, nil
}
