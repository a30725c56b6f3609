package mongo

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/sahelys/sahelys-backend/policy"
	"github.com/sahelys/sahelys-backend/services/mongo/command"
	"github.com/sahelys/sahelys-backend/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const previewLength = 100

// MessageService handles admin-to-employee messaging.
type MessageService struct {
	*MongoService
}

func NewMessageService(mongoService *MongoService) *MessageService {
	return &MessageService{MongoService: mongoService}
}

func (s *MessageService) collection() *mongo.Collection {
	return s.GetCollection(CollectionMessages)
}

type messageDoc struct {
	models.Message `bson:",inline"`
	SenderInfo     []models.User `bson:"sender_info"`
	ReceiverInfo   []models.User `bson:"receiver_info"`
}

func (d *messageDoc) toView() *models.MessageView {
	view := &models.MessageView{Message: d.Message}
	if len(d.SenderInfo) > 0 {
		view.SenderName = d.SenderInfo[0].Name
	} else {
		view.SenderName = "unknown"
	}
	if len(d.ReceiverInfo) > 0 {
		view.ReceiverName = d.ReceiverInfo[0].Name
	} else {
		view.ReceiverName = "unknown"
	}
	return view
}

func partyLookups() []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from":         CollectionUsers,
			"localField":   "sender_id",
			"foreignField": "_id",
			"as":           "sender_info",
		}},
		{"$lookup": bson.M{
			"from":         CollectionUsers,
			"localField":   "receiver_id",
			"foreignField": "_id",
			"as":           "receiver_info",
		}},
	}
}

// resolveReceiver loads a receiver and checks it is an active employee.
func (s *MessageService) resolveReceiver(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := query.FindByID(ctx, s.GetCollection(CollectionUsers), id, &user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("receiver %s not found", id.Hex())
		}
		return nil, apperrors.Internalf("failed to get receiver: %v", err)
	}
	if !user.IsEmployee() || !user.IsActive() {
		return nil, apperrors.Validationf("receiver %s is not an active employee", id.Hex())
	}
	return &user, nil
}

// Send delivers one message from an admin to an active employee.
func (s *MessageService) Send(ctx context.Context, actor *models.User, receiverID, subject, content string) (*models.MessageView, error) {
	if err := policy.CanSendMessage(actor); err != nil {
		return nil, err
	}
	rid, err := ObjectIDFromString(receiverID)
	if err != nil {
		return nil, apperrors.Validationf("invalid receiver id")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("content is required")
	}

	receiver, err := s.resolveReceiver(ctx, rid)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   actor.ID,
		ReceiverID: rid,
		Subject:    subject,
		Content:    content,
		ReadStatus: false,
		CreatedAt:  time.Now().UTC(),
	}

	res, err := command.InsertOne(ctx, s.collection(), message)
	if err != nil {
		return nil, apperrors.Internalf("failed to send message: %v", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.Internalf("failed to get inserted message ID, expected ObjectID, got %T", res.InsertedID)
	}
	message.ID = oid

	log.Printf("MessageService: Sent message %s to %s", oid.Hex(), receiver.Name)
	return &models.MessageView{
		Message:      *message,
		SenderName:   actor.Name,
		ReceiverName: receiver.Name,
	}, nil
}

// Broadcast sends the same message to every listed receiver. Delivery is
// all-or-nothing: every receiver is resolved before anything is written,
// and one bad id rejects the whole batch.
func (s *MessageService) Broadcast(ctx context.Context, actor *models.User, receiverIDs []string, subject, content string) ([]*models.MessageView, error) {
	if err := policy.CanSendMessage(actor); err != nil {
		return nil, err
	}
	if len(receiverIDs) == 0 {
		return nil, apperrors.Validationf("at least one receiver is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validationf("content is required")
	}

	receivers := make([]*models.User, 0, len(receiverIDs))
	seen := make(map[primitive.ObjectID]bool, len(receiverIDs))
	for _, raw := range receiverIDs {
		rid, err := ObjectIDFromString(raw)
		if err != nil {
			return nil, apperrors.Validationf("invalid receiver id %q", raw)
		}
		if seen[rid] {
			continue
		}
		seen[rid] = true
		receiver, err := s.resolveReceiver(ctx, rid)
		if err != nil {
			return nil, err
		}
		receivers = append(receivers, receiver)
	}

	// IDs are assigned up front so the views can be built without mapping
	// the insert result back onto the batch.
	now := time.Now().UTC()
	messages := make([]*models.Message, 0, len(receivers))
	for _, receiver := range receivers {
		messages = append(messages, &models.Message{
			ID:         NewObjectID(),
			SenderID:   actor.ID,
			ReceiverID: receiver.ID,
			Subject:    subject,
			Content:    content,
			ReadStatus: false,
			CreatedAt:  now,
		})
	}

	if _, err := command.InsertMany(ctx, s.collection(), messages); err != nil {
		return nil, apperrors.Internalf("failed to broadcast messages: %v", err)
	}

	views := make([]*models.MessageView, 0, len(messages))
	for i, message := range messages {
		views = append(views, &models.MessageView{
			Message:      *message,
			SenderName:   actor.Name,
			ReceiverName: receivers[i].Name,
		})
	}

	log.Printf("MessageService: Broadcast message to %d receivers", len(views))
	return views, nil
}

// Inbox lists the actor's messages newest first: received ones for
// employees, sent ones for admins. Content is truncated to a preview.
func (s *MessageService) Inbox(ctx context.Context, actor *models.User, unreadOnly bool, limit, skip int64) ([]*models.MessageSummary, error) {
	builder := query.NewBuilder()
	if actor.IsAdmin() {
		builder.Where("sender_id", actor.ID)
	} else {
		builder.Where("receiver_id", actor.ID)
	}
	if unreadOnly {
		builder.Where("read_status", false)
	}

	pipeline := []bson.M{{"$match": builder.Build()}}
	pipeline = append(pipeline, partyLookups()...)
	pipeline = append(pipeline,
		bson.M{"$sort": bson.M{"created_at": -1}},
		bson.M{"$skip": skip},
		bson.M{"$limit": limit},
	)

	var docs []messageDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get messages: %v", err)
	}

	summaries := make([]*models.MessageSummary, 0, len(docs))
	for i := range docs {
		view := docs[i].toView()
		otherParty := view.SenderName
		if actor.IsAdmin() {
			otherParty = view.ReceiverName
		}
		summaries = append(summaries, &models.MessageSummary{
			ID:             view.ID.Hex(),
			Subject:        view.Subject,
			ContentPreview: isoweek.Truncate(view.Content, previewLength),
			SenderName:     otherParty,
			ReadStatus:     view.ReadStatus,
			CreatedAt:      view.CreatedAt,
		})
	}
	return summaries, nil
}

// Get loads one message. A receiver opening an unread message marks it
// read as a side effect.
func (s *MessageService) Get(ctx context.Context, actor *models.User, id string) (*models.MessageView, error) {
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid message id")
	}

	pipeline := []bson.M{{"$match": bson.M{"_id": oid}}}
	pipeline = append(pipeline, partyLookups()...)

	var docs []messageDoc
	if err := query.Aggregate(ctx, s.collection(), pipeline, &docs); err != nil {
		return nil, apperrors.Internalf("failed to get message: %v", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFoundf("message not found")
	}
	doc := docs[0]

	if err := policy.CanReadMessage(actor, doc.SenderID, doc.ReceiverID); err != nil {
		return nil, err
	}

	view := doc.toView()
	if actor.ID == doc.ReceiverID && !doc.ReadStatus {
		marked, err := s.markRead(ctx, oid, actor.ID)
		if err != nil {
			return nil, err
		}
		if marked != nil {
			view.ReadStatus = marked.ReadStatus
			view.ReadAt = marked.ReadAt
		}
	}
	return view, nil
}

// markRead flips read_status and stamps read_at. The filter requires
// read_status false, so a repeat call matches nothing and the original
// read_at survives.
func (s *MessageService) markRead(ctx context.Context, id, receiverID primitive.ObjectID) (*models.Message, error) {
	collection := s.collection()

	filter := bson.M{"_id": id, "receiver_id": receiverID, "read_status": false}
	update := command.NewUpdateBuilder().
		Set("read_status", true).
		CurrentDate("read_at")
	if _, err := command.UpdateOne(ctx, collection, filter, update.Build()); err != nil {
		return nil, apperrors.Internalf("failed to mark message read: %v", err)
	}

	var message models.Message
	if err := query.FindByID(ctx, collection, id, &message); err != nil {
		return nil, apperrors.Internalf("failed to reload message: %v", err)
	}
	return &message, nil
}

// MarkRead marks a received message read. Idempotent: re-marking an
// already-read message succeeds without touching read_at.
func (s *MessageService) MarkRead(ctx context.Context, actor *models.User, id string) (*models.Message, error) {
	if err := policy.CanMarkMessageRead(actor); err != nil {
		return nil, err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return nil, apperrors.Validationf("invalid message id")
	}

	exists, err := query.Exists(ctx, s.collection(), bson.M{"_id": oid, "receiver_id": actor.ID})
	if err != nil {
		return nil, apperrors.Internalf("failed to get message: %v", err)
	}
	if !exists {
		return nil, apperrors.NotFoundf("message not found")
	}
	return s.markRead(ctx, oid, actor.ID)
}

// Delete removes a message the acting admin sent.
func (s *MessageService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := policy.CanDeleteMessage(actor); err != nil {
		return err
	}
	oid, err := ObjectIDFromString(id)
	if err != nil {
		return apperrors.Validationf("invalid message id")
	}

	res, err := command.DeleteOne(ctx, s.collection(), bson.M{"_id": oid, "sender_id": actor.ID})
	if err != nil {
		return apperrors.Internalf("failed to delete message: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFoundf("message not found")
	}

	log.Printf("MessageService: Deleted message %s", oid.Hex())
	return nil
}

// Stats counts the actor's messages: total, unread, and those created
// since the current ISO week's Monday.
func (s *MessageService) Stats(ctx context.Context, actor *models.User) (*models.MessageStats, error) {
	collection := s.collection()

	scope := bson.M{"receiver_id": actor.ID}
	if actor.IsAdmin() {
		scope = bson.M{"sender_id": actor.ID}
	}

	total, err := query.Count(ctx, collection, scope)
	if err != nil {
		return nil, apperrors.Internalf("failed to count messages: %v", err)
	}

	unreadFilter := bson.M{"read_status": false}
	for k, v := range scope {
		unreadFilter[k] = v
	}
	unread, err := query.Count(ctx, collection, unreadFilter)
	if err != nil {
		return nil, apperrors.Internalf("failed to count unread messages: %v", err)
	}

	weekStart, _, err := isoweek.DateRange(isoweek.FromDate(time.Now().UTC()))
	if err != nil {
		return nil, apperrors.Internalf("failed to resolve current week: %v", err)
	}
	weekFilter := bson.M{"created_at": bson.M{"$gte": weekStart}}
	for k, v := range scope {
		weekFilter[k] = v
	}
	thisWeek, err := query.Count(ctx, collection, weekFilter)
	if err != nil {
		return nil, apperrors.Internalf("failed to count weekly messages: %v", err)
	}

	return &models.MessageStats{
		TotalMessages:    int(total),
		UnreadMessages:   int(unread),
		MessagesThisWeek: int(thisWeek),
	}, nil
}
