package models

import "encoding/json"

// User mirrors the upstream GET /api/users/me payload.
type User struct {
	ID              string              `json:"id"`
	DisplayName     string              `json:"displayName"`
	Role            string              `json:"role"`
	EnrolledCourses []EnrolledCourseRef `json:"enrolledCourses"`
}

// EnrolledCourseRef is one entry of a user's enrolled course list. Upstream
// emits either a bare course-id string or an object exposing the id under
// "id", "_id" or "courseId" depending on how old the enrollment record is.
type EnrolledCourseRef struct {
	CourseID string
}

func (r *EnrolledCourseRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.CourseID = s
		return nil
	}

	var obj struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		CourseID string `json:"courseId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.ID != "":
		r.CourseID = obj.ID
	case obj.MongoID != "":
		r.CourseID = obj.MongoID
	default:
		r.CourseID = obj.CourseID
	}
	return nil
}

func (r EnrolledCourseRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.CourseID)
}
