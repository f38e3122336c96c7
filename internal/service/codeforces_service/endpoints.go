package codeforces_service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/goccy/go-json"
)

// UserInfo fetches the profile of a single handle.
func (c *Client) UserInfo(ctx context.Context, handle string) (User, error) {
	params := url.Values{}
	params.Add("handles", handle)

	users, err := call[[]User](ctx, c, methodUserInfo, params)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, fmt.Errorf(
			"%w, %s returned no user for handle %s",
			spm_errors.ErrRemoteAPI,
			methodUserInfo,
			handle,
		)
	}

	return users[0], nil
}

// UserRating fetches the full rating history of a handle, oldest contest first.
func (c *Client) UserRating(ctx context.Context, handle string) ([]RatingChange, error) {
	params := url.Values{}
	params.Add("handle", handle)

	return call[[]RatingChange](ctx, c, methodUserRating, params)
}

// UserStatus fetches count submissions of a handle starting at the 1 based
// offset from, most recent first.
func (c *Client) UserStatus(ctx context.Context, handle string, from int, count int) ([]Submission, error) {
	params := url.Values{}
	params.Add("handle", handle)
	params.Add("from", strconv.Itoa(from))
	params.Add("count", strconv.Itoa(count))

	return call[[]Submission](ctx, c, methodUserStatus, params)
}

func (c *Client) methodUrl(method string, params url.Values) string {
	u := c.baseURL.JoinPath(method)
	u.RawQuery = params.Encode()
	return u.String()
}

func call[T any](ctx context.Context, c *Client, method string, params url.Values) (T, error) {
	var zero T

	body, err := c.Fetch(ctx, c.methodUrl(method, params))
	if err != nil {
		return zero, err
	}

	var res envelope[T]
	if err = json.Unmarshal(body, &res); err != nil {
		err = fmt.Errorf(
			"%w, %w, cannot decode %s response, %w",
			spm_errors.ErrRemoteAPI,
			spm_errors.ErrMalformedResponse,
			method,
			err,
		)
		c.logger.Error(err)
		return zero, err
	}

	if res.Status != StatusOK {
		err = fmt.Errorf(
			"%w, %s returned %q status, %s",
			spm_errors.ErrRemoteAPI,
			method,
			res.Status,
			res.Comment,
		)
		c.logger.WithField("params", params.Encode()).Warn(err)
		return zero, err
	}

	return res.Result, nil
}

// ProblemKey identifies a problem as "{contestId}-{index}". Problems outside
// of a contest fall back to their problemset name.
func (s Submission) ProblemKey() string {
	return s.Problem.key()
}

func (p Problem) key() string {
	return p.contestLabel() + "-" + p.Index
}

func (p Problem) contestLabel() string {
	if p.ContestID != nil {
		return strconv.FormatInt(*p.ContestID, 10)
	}
	return p.ProblemsetName
}

// ContestIDString is the contest id of the problem, nil when the problem
// does not belong to a contest.
func (p Problem) ContestIDString() *string {
	if p.ContestID == nil {
		return nil
	}
	id := strconv.FormatInt(*p.ContestID, 10)
	return &id
}
