package handler

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veil/internal/profile/models"
	"veil/internal/profile/service"
	accountstore "veil/internal/profile/store/account"
	profilestore "veil/internal/profile/store/profile"
	"veil/internal/zk"
	id "veil/pkg/domain"
)

type HandlerSuite struct {
	suite.Suite
	accounts *accountstore.InMemoryStore
	profiles *profilestore.InMemoryStore
	issuer   *zk.StandInIssuer
	router   chi.Router

	account   *models.Account
	accessKey []byte
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.accounts = accountstore.NewInMemoryStore()
	s.profiles = profilestore.NewInMemoryStore()

	issuer, err := zk.NewStandInIssuer([]byte("handler-test-issuer-secret"))
	s.Require().NoError(err)
	s.issuer = issuer

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(s.accounts, s.profiles, issuer, service.WithLogger(logger))
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)

	s.accessKey = make([]byte, 16)
	for i := range s.accessKey {
		s.accessKey[i] = byte(i)
	}
	s.account = &models.Account{
		ID:      id.AccountID(uuid.New()),
		AliasID: id.AccountID(uuid.New()),
		IdentityKeys: map[models.IdentityType][]byte{
			models.IdentityTypePrimary: []byte("identity-key-material"),
		},
		UnidentifiedAccessKey: s.accessKey,
		CurrentProfileVersion: "v1",
	}
	s.Require().NoError(s.accounts.Put(context.Background(), s.account))
	s.Require().NoError(s.profiles.Put(context.Background(), &models.VersionedProfile{
		AccountID:      s.account.ID,
		Version:        "v1",
		Name:           []byte("encrypted-name"),
		PaymentAddress: []byte("encrypted-payment"),
		Commitment:     []byte("profile-key-commitment-material!"),
	}))
}

func (s *HandlerSuite) get(path string, accessKey []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accessKey != nil {
		req.Header.Set(UnidentifiedAccessKeyHeader, base64.StdEncoding.EncodeToString(accessKey))
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func (s *HandlerSuite) TestGetUnversionedProfile() {
	recorder := s.get("/v1/profile/"+s.account.ID.String(), s.accessKey)
	s.Require().Equal(http.StatusOK, recorder.Code)

	var response models.UnversionedProfileResponse
	s.Require().NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	s.Equal([]byte("identity-key-material"), response.IdentityKey)
	s.NotEmpty(response.UnidentifiedAccessChecksum)
}

func (s *HandlerSuite) TestGetUnversionedProfileDenied() {
	s.Run("wrong key", func() {
		wrongKey := make([]byte, 16)
		recorder := s.get("/v1/profile/"+s.account.ID.String(), wrongKey)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})

	s.Run("missing header", func() {
		recorder := s.get("/v1/profile/"+s.account.ID.String(), nil)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})

	s.Run("unknown account looks identical to wrong key", func() {
		recorder := s.get("/v1/profile/"+uuid.NewString(), s.accessKey)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})

	s.Run("undecodable header is treated as absent", func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/profile/"+s.account.ID.String(), nil)
		req.Header.Set(UnidentifiedAccessKeyHeader, "%%% not base64 %%%")
		recorder := httptest.NewRecorder()
		s.router.ServeHTTP(recorder, req)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})

	s.Run("alias identifier", func() {
		recorder := s.get("/v1/profile/alias:"+s.account.AliasID.String(), s.accessKey)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})
}

func (s *HandlerSuite) TestGetUnversionedProfileMalformedIdentifier() {
	recorder := s.get("/v1/profile/not-a-uuid", s.accessKey)
	s.Equal(http.StatusBadRequest, recorder.Code)
}

func (s *HandlerSuite) TestGetVersionedProfile() {
	recorder := s.get("/v1/profile/"+s.account.ID.String()+"/v1", s.accessKey)
	s.Require().Equal(http.StatusOK, recorder.Code)

	var response models.VersionedProfileResponse
	s.Require().NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	s.Equal([]byte("encrypted-name"), response.Name)
	s.Equal([]byte("encrypted-payment"), response.PaymentAddress, "requested version is current")
}

func (s *HandlerSuite) TestGetVersionedProfileErrors() {
	s.Run("unknown version", func() {
		recorder := s.get("/v1/profile/"+s.account.ID.String()+"/v9", s.accessKey)
		s.Equal(http.StatusNotFound, recorder.Code)
	})

	s.Run("alias identifier", func() {
		recorder := s.get("/v1/profile/alias:"+s.account.AliasID.String()+"/v1", s.accessKey)
		s.Equal(http.StatusBadRequest, recorder.Code)
	})

	s.Run("denied caller", func() {
		recorder := s.get("/v1/profile/"+s.account.ID.String()+"/v1", nil)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})
}

func (s *HandlerSuite) TestGetExpiringProfileKeyCredential() {
	credentialRequest := s.issuer.CreateCredentialRequest([]byte("profile-key-commitment-material!"))
	path := "/v1/profile/" + s.account.ID.String() + "/v1/" +
		hex.EncodeToString(credentialRequest) + "?credentialType=expiringProfileKey"

	recorder := s.get(path, s.accessKey)
	s.Require().Equal(http.StatusOK, recorder.Code)

	var response models.ExpiringProfileKeyCredentialResponse
	s.Require().NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	s.NotEmpty(response.Credential)
}

func (s *HandlerSuite) TestGetExpiringProfileKeyCredentialErrors() {
	credentialRequest := s.issuer.CreateCredentialRequest([]byte("profile-key-commitment-material!"))
	encoded := hex.EncodeToString(credentialRequest)

	s.Run("missing credential type", func() {
		recorder := s.get("/v1/profile/"+s.account.ID.String()+"/v1/"+encoded, s.accessKey)
		s.Equal(http.StatusBadRequest, recorder.Code)
	})

	s.Run("non-hex credential request", func() {
		path := "/v1/profile/" + s.account.ID.String() + "/v1/zzzz?credentialType=expiringProfileKey"
		recorder := s.get(path, s.accessKey)
		s.Equal(http.StatusBadRequest, recorder.Code)
	})

	s.Run("request bound to a different commitment", func() {
		foreign := s.issuer.CreateCredentialRequest([]byte("some-other-commitment-material!!"))
		path := "/v1/profile/" + s.account.ID.String() + "/v1/" +
			hex.EncodeToString(foreign) + "?credentialType=expiringProfileKey"
		recorder := s.get(path, s.accessKey)
		s.Equal(http.StatusBadRequest, recorder.Code)
	})

	s.Run("denied caller", func() {
		path := "/v1/profile/" + s.account.ID.String() + "/v1/" + encoded + "?credentialType=expiringProfileKey"
		recorder := s.get(path, nil)
		s.Equal(http.StatusUnauthorized, recorder.Code)
	})

	s.Run("unknown version", func() {
		path := "/v1/profile/" + s.account.ID.String() + "/v9/" + encoded + "?credentialType=expiringProfileKey"
		recorder := s.get(path, s.accessKey)
		s.Equal(http.StatusNotFound, recorder.Code)
	})
}
