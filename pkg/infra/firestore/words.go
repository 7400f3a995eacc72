// Package firestore stores personal words in Cloud Firestore under
// dictionaries/{dictionary}/users/{user}/words/{word}.
package firestore

import (
	"context"
	"net/url"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionDictionaries = "dictionaries"
	collectionUsers        = "users"
	collectionWords        = "words"
)

type wordDoc struct {
	Word      string    `firestore:"word"`
	CreatedAt time.Time `firestore:"created_at"`
}

// WordRepository is a Firestore backed interfaces.WordRepository
type WordRepository struct {
	client *firestore.Client
}

var _ interfaces.WordRepository = (*WordRepository)(nil)

// New connects to the given project and database
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*WordRepository, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}
	return &WordRepository{client: client}, nil
}

// Close releases the client
func (r *WordRepository) Close() error {
	return r.client.Close()
}

func (r *WordRepository) words(dictionary, user string) *firestore.CollectionRef {
	return r.client.Collection(collectionDictionaries).Doc(docID(dictionary)).
		Collection(collectionUsers).Doc(docID(user)).
		Collection(collectionWords)
}

// docID escapes "/" and other characters Firestore does not allow in IDs
func docID(s string) string {
	id := url.PathEscape(s)
	if id == "." || id == ".." {
		id = url.QueryEscape(id) + "_"
	}
	return id
}

// ListWords returns the user's words sorted
func (r *WordRepository) ListWords(ctx context.Context, dictionary, user string) ([]string, error) {
	iter := r.words(dictionary, user).Documents(ctx)
	defer iter.Stop()

	words := []string{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list personal words",
				goerr.V("dictionary", dictionary), goerr.V("user", user))
		}

		var w wordDoc
		if err := doc.DataTo(&w); err != nil {
			return nil, goerr.Wrap(err, "failed to decode personal word", goerr.V("doc", doc.Ref.ID))
		}
		words = append(words, w.Word)
	}
	sort.Strings(words)
	return words, nil
}

// PutWord stores a word; storing it again keeps the first creation time
func (r *WordRepository) PutWord(ctx context.Context, dictionary, user, word string) error {
	ref := r.words(dictionary, user).Doc(docID(word))
	_, err := ref.Create(ctx, wordDoc{Word: word, CreatedAt: time.Now().UTC()})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return goerr.Wrap(err, "failed to store personal word",
			goerr.V("dictionary", dictionary), goerr.V("user", user), goerr.V("word", word))
	}
	return nil
}

// DeleteWord removes a word; deleting a missing word is not an error
func (r *WordRepository) DeleteWord(ctx context.Context, dictionary, user, word string) error {
	if _, err := r.words(dictionary, user).Doc(docID(word)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete personal word",
			goerr.V("dictionary", dictionary), goerr.V("user", user), goerr.V("word", word))
	}
	return nil
}
